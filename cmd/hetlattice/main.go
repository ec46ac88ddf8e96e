// hetlattice - coincidence lattice search for 2D heterostructures.
//
// Given two 2D lattices, hetlattice twists the top layer through a range of
// angles and looks for supercells in which both layers coincide within a
// tolerance, reporting the strain needed to make them commensurate.
//
// Commands:
//
//	build   - search all angles and list one supercell per angle
//	match   - sweep tolerances and report the lowest-stress supercell
//	invert  - determinant and inverse of a 3x3 matrix
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"fortio.org/log"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ansipixels/hetlattice/coincidence"
	"github.com/ansipixels/hetlattice/config"
	"github.com/ansipixels/hetlattice/export"
	"github.com/ansipixels/hetlattice/linalg"
)

var version = "dev"

// searchFlags are the command line overrides for a run file.
type searchFlags struct {
	configPath string
	output     string
	nmax       int
	nmin       int
	angles     []float64
	limits     []float64
	step       float64
	tolerance  float64
	weight     float64
	distance   float64
	vacuum     float64
	ladderStep float64
	ladderMax  float64
	limit      int
}

func main() {
	var verbose int
	var quiet bool

	root := &cobra.Command{
		Use:   "hetlattice",
		Short: "Coincidence lattices for 2D heterostructures",
		Long: `hetlattice - coincidence lattice search for 2D heterostructures

Layers and search parameters are read from a YAML run file (-c); any
search flag given on the command line overrides the file.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setVerbosity(verbose, quiet)
		},
	}
	root.PersistentFlags().CountVarP(&verbose, "verbose", "V", "Increase log verbosity (repeatable)")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors")

	root.AddCommand(newBuildCmd(), newMatchCmd(), newInvertCmd())

	if err := fang.Execute(context.Background(), root, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func setVerbosity(verbose int, quiet bool) {
	switch {
	case quiet:
		log.SetLogLevel(log.Warning)
	case verbose >= 2:
		log.SetLogLevel(log.Debug)
	case verbose == 1:
		log.SetLogLevel(log.Verbose)
	default:
		log.SetLogLevel(log.Info)
	}
}

func newBuildCmd() *cobra.Command {
	sf := &searchFlags{}
	cmd := &cobra.Command{
		Use:   "build -c run.yaml",
		Short: "List coincidence supercells for every angle",
		Long:  "Search every twist angle and print the smallest coincidence supercell found at each, ordered by area.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := sf.load(cmd.Flags())
			if err != nil {
				return err
			}
			return runBuild(cmd.OutOrStdout(), f, sf.limit, sf.output)
		},
	}
	sf.register(cmd.Flags())
	cmd.Flags().IntVar(&sf.limit, "limit", 20, "Print at most this many results (0 for all)")
	return cmd
}

func newMatchCmd() *cobra.Command {
	sf := &searchFlags{}
	cmd := &cobra.Command{
		Use:   "match -c run.yaml",
		Short: "Find the lowest-stress coincidence supercell",
		Long:  "Sweep increasing tolerances and report the lowest-stress supercell of the first tolerance that yields any.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := sf.load(cmd.Flags())
			if err != nil {
				return err
			}
			return runMatch(cmd.OutOrStdout(), f, sf.output)
		},
	}
	sf.register(cmd.Flags())
	cmd.Flags().Float64Var(&sf.ladderStep, "ladder-step", 0.05, "Tolerance ladder step in Å")
	cmd.Flags().Float64Var(&sf.ladderMax, "ladder-max", 0.2, "Largest tolerance tried in Å")
	return cmd
}

func newInvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invert a b c d e f g h i",
		Short: "Determinant and inverse of a 3x3 matrix",
		Long:  "Print the determinant and inverse of the row-major 3x3 matrix given as nine numbers.",
		Args:  cobra.ExactArgs(9),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvert(cmd.OutOrStdout(), args)
		},
	}
}

func (sf *searchFlags) register(fs *pflag.FlagSet) {
	def := config.Default()
	fs.StringVarP(&sf.configPath, "config", "c", "", "YAML run file describing both layers (required)")
	fs.StringVarP(&sf.output, "output", "o", "", "Write the best supercell to this .glb or .gltf file")
	fs.IntVarP(&sf.nmax, "nmax", "N", def.Search.NMax, "Maximum number of translations")
	fs.IntVar(&sf.nmin, "nmin", def.Search.NMin, "Minimum number of translations")
	fs.Float64SliceVarP(&sf.angles, "angle", "a", nil, "Explicit angle in degrees (repeatable)")
	fs.Float64SliceVar(&sf.limits, "angle-limits", def.Search.AngleLimits, "Lower and upper angle bound in degrees")
	fs.Float64Var(&sf.step, "angle-step", def.Search.AngleStep, "Angle increment in degrees")
	fs.Float64VarP(&sf.tolerance, "tolerance", "t", def.Search.Tolerance, "Distance in Å below which lattice points match")
	fs.Float64VarP(&sf.weight, "weight", "w", def.Search.Weight, "Coincidence cell weight, C = A + w*(B-A)")
	fs.Float64VarP(&sf.distance, "distance", "d", def.Stack.Distance, "Interlayer distance in Å")
	fs.Float64Var(&sf.vacuum, "vacuum", def.Stack.Vacuum, "Vacuum thickness in Å")
}

// load reads the run file and applies the flags the user set explicitly.
func (sf *searchFlags) load(fs *pflag.FlagSet) (config.File, error) {
	if sf.configPath == "" {
		return config.File{}, fmt.Errorf("a run file is required (-c run.yaml)")
	}
	f, err := config.Load(sf.configPath)
	if err != nil {
		return config.File{}, err
	}
	if fs.Changed("nmax") {
		f.Search.NMax = sf.nmax
	}
	if fs.Changed("nmin") {
		f.Search.NMin = sf.nmin
	}
	if fs.Changed("angle") {
		f.Search.Angles = sf.angles
	}
	if fs.Changed("angle-limits") {
		f.Search.AngleLimits = sf.limits
	}
	if fs.Changed("angle-step") {
		f.Search.AngleStep = sf.step
	}
	if fs.Changed("tolerance") {
		f.Search.Tolerance = sf.tolerance
	}
	if fs.Changed("weight") {
		f.Search.Weight = sf.weight
	}
	if fs.Changed("distance") {
		f.Stack.Distance = sf.distance
	}
	if fs.Changed("vacuum") {
		f.Stack.Vacuum = sf.vacuum
	}
	if fs.Lookup("ladder-step") != nil && fs.Changed("ladder-step") {
		f.Search.LadderStep = sf.ladderStep
	}
	if fs.Lookup("ladder-max") != nil && fs.Changed("ladder-max") {
		f.Search.LadderMax = sf.ladderMax
	}
	if err := f.Validate(); err != nil {
		return config.File{}, fmt.Errorf("flags: %w", err)
	}
	return f, nil
}

func runBuild(w io.Writer, f config.File, limit int, output string) error {
	bottom, top, err := f.Lattices()
	if err != nil {
		return err
	}
	log.Infof("Building heterostructures from %s and %s", bottom.Name, top.Name)
	results, err := coincidence.Run(bottom, top, f.Options())
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	log.Infof("Found %d coincidence supercells", len(results))

	shown := results
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	if err := printResults(w, shown); err != nil {
		return err
	}
	if output == "" {
		return nil
	}
	return save(f, results[0], output)
}

func runMatch(w io.Writer, f config.File, output string) error {
	bottom, top, err := f.Lattices()
	if err != nil {
		return err
	}
	log.Infof("Matching %s and %s", bottom.Name, top.Name)
	best, err := coincidence.Match(bottom, top, f.Options(), f.Ladder())
	if err != nil {
		log.Critf("Could not find any matching unit cells: %v", err)
		return err
	}
	log.Infof("Found coincidence structure: %s", best)
	if err := printResults(w, []coincidence.Result{best}); err != nil {
		return err
	}
	if output == "" {
		return nil
	}
	return save(f, best, output)
}

func save(f config.File, r coincidence.Result, path string) error {
	bottom, top, err := f.Lattices()
	if err != nil {
		return err
	}
	stack := export.Stack{
		Bottom:   bottom,
		Top:      top,
		Result:   r,
		Distance: f.Stack.Distance,
		Vacuum:   f.Stack.Vacuum,
	}
	log.Infof("Writing structure to %s (cell height %.2f Å) ...", path, stack.Height())
	if err := export.Save(stack, path); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func printResults(w io.Writer, results []coincidence.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ANGLE\tM\tN\tSTRESS %\tAREA Å²\tSITES")
	for _, r := range results {
		fmt.Fprintf(tw, "%.2f\t%v\t%v\t%.4f\t%.3f\t%d\n", r.Angle, r.M, r.N, r.Stress, r.Area(), r.Sites())
	}
	return tw.Flush()
}

func runInvert(w io.Writer, args []string) error {
	var m linalg.Mat3[float64]
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i+1, err)
		}
		m[i/3][i%3] = v
	}
	det := linalg.Determinant3(m)
	fmt.Fprintf(w, "Determinant: %g\n", det)
	inv, err := linalg.Invert3(m)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Inverse:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	for _, row := range inv {
		fmt.Fprintf(tw, "%g\t%g\t%g\t\n", row[0], row[1], row[2])
	}
	return tw.Flush()
}
