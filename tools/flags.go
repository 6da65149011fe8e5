package tools

import (
	"flag"
	"io"
	"strconv"
	"strings"

	"github.com/ecopia-map/urdf_simplifier/internal/simplifier"
	"github.com/golang/glog"
)

const (
	CommandSimplify = "simplify"
	CommandReport   = "report"
)

// long names of the shorthand flags, used to tell which options were set explicitly
var flagShorthands = map[string]string{
	"r": "ros",
	"s": "select",
	"e": "exclude",
	"v": "verbose",
	"c": "config",
	"h": "help",
	"t": "timestamp",
}

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

type FitFlags struct {
	BboxType   *string  `json:"bbox_type"`
	TightFit   *bool    `json:"tight_fit"`
	Scale      *float64 `json:"scale"`
	ScaleX     *OptionalFloat64
	ScaleY     *OptionalFloat64
	ScaleZ     *OptionalFloat64
	Padding    *float64 `json:"padding"`
	PaddingX   *OptionalFloat64
	PaddingY   *OptionalFloat64
	PaddingZ   *OptionalFloat64
	MinSize    *float64    `json:"min_size"`
	Exclude    *StringList `json:"exclude"`
	MergeLinks *bool       `json:"merge_links"`
	Workers    *int        `json:"workers"`
}

type FlagsForCommand struct {
	FitFlags
	Command      string
	Args         []string `json:"args"`
	Ros          *bool    `json:"ros"`
	Select       *bool    `json:"select"`
	Verbose      *bool    `json:"verbose"`
	Config       *string  `json:"config"`
	Silent       *bool
	LogTimestamp *bool
	Help         *bool
	Version      *bool

	// long names of the flags given on the command line
	set     map[string]bool
	flagSet *flag.FlagSet
}

// OptionalFloat64 is a float flag that stays nil unless given.
type OptionalFloat64 struct {
	Value *float64
}

func (o *OptionalFloat64) String() string {
	if o == nil || o.Value == nil {
		return ""
	}
	return strconv.FormatFloat(*o.Value, 'g', -1, 64)
}

func (o *OptionalFloat64) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// StringList collects a repeatable, comma separated flag.
type StringList []string

func (l *StringList) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ",")
}

func (l *StringList) Set(s string) error {
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*l = append(*l, item)
		}
	}
	return nil
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	version := defineBoolFlag("version", "", false, "Displays the version of urdf_simplifier.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

// ParseFlagsForCommand parses the arguments following a subcommand. Flags may
// appear before, between or after the positional arguments.
func ParseFlagsForCommand(command string, args []string) (FlagsForCommand, error) {
	glog.V(1).Infoln("command", command, "args", FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-"+command, flag.ContinueOnError)

	bboxType := defineStringFlagCommand(flagCommand, "bbox-type", "", "obb", "Bounding box type, 'obb' for an oriented bounding box or 'aabb' for an axis-aligned one.")
	tightFit := defineBoolFlagCommand(flagCommand, "tight-fit", "", false, "Fits the box on the convex hull of the mesh and searches hull face orientations for the oriented box.")
	scale := defineFloat64FlagCommand(flagCommand, "scale", "", simplifier.DefaultScale, "Uniform scaling factor for the bounding box dimensions.")
	scaleX := defineOptionalFloat64FlagCommand(flagCommand, "scale-x", "Scaling factor for the X dimension (overrides --scale).")
	scaleY := defineOptionalFloat64FlagCommand(flagCommand, "scale-y", "Scaling factor for the Y dimension (overrides --scale).")
	scaleZ := defineOptionalFloat64FlagCommand(flagCommand, "scale-z", "Scaling factor for the Z dimension (overrides --scale).")
	padding := defineFloat64FlagCommand(flagCommand, "padding", "", simplifier.DefaultPadding, "Uniform padding added on every side of the bounding box, in meters.")
	paddingX := defineOptionalFloat64FlagCommand(flagCommand, "padding-x", "Padding along X in meters (overrides --padding).")
	paddingY := defineOptionalFloat64FlagCommand(flagCommand, "padding-y", "Padding along Y in meters (overrides --padding).")
	paddingZ := defineOptionalFloat64FlagCommand(flagCommand, "padding-z", "Padding along Z in meters (overrides --padding).")
	minSize := defineFloat64FlagCommand(flagCommand, "min-size", "", simplifier.DefaultMinSize, "Minimum size of any bounding box dimension, in meters.")
	exclude := defineStringListFlagCommand(flagCommand, "exclude", "e", "Names of links excluded from simplification, repeatable and comma separated.")
	mergeLinks := defineBoolFlagCommand(flagCommand, "merge-links", "", false, "Replaces all mesh collisions of a link with a single box.")
	workers := defineIntFlagCommand(flagCommand, "workers", "", 0, "Number of fitting goroutines, 0 uses one per CPU.")

	ros := defineBoolFlagCommand(flagCommand, "ros", "r", false, "Resolves package:// mesh paths through ROS_PACKAGE_PATH.")
	sel := defineBoolFlagCommand(flagCommand, "select", "s", false, "Asks for every link whether its collision models should be simplified.")
	verbose := defineBoolFlagCommand(flagCommand, "verbose", "v", false, "Prints the size and volume ratio of every fitted box.")
	config := defineStringFlagCommand(flagCommand, "config", "c", "", "YAML file with default options, flags given on the command line override it.")
	silent := defineBoolFlagCommand(flagCommand, "silent", "", false, "Use to suppress all the non-error messages.")
	logTimestamp := defineBoolFlagCommand(flagCommand, "timestamp", "t", false, "Adds timestamp to log messages.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")
	version := defineBoolFlagCommand(flagCommand, "version", "", false, "Displays the version of urdf_simplifier.")

	args = expandListFlags(flagCommand, args, []string{"exclude", "e"}, requiredPositional[command])
	positional, err := parseInterleaved(flagCommand, args)
	if err != nil {
		return FlagsForCommand{}, err
	}

	set := map[string]bool{}
	flagCommand.Visit(func(f *flag.Flag) {
		if long, ok := flagShorthands[f.Name]; ok {
			set[long] = true
		} else {
			set[f.Name] = true
		}
	})

	return FlagsForCommand{
		FitFlags: FitFlags{
			BboxType:   bboxType,
			TightFit:   tightFit,
			Scale:      scale,
			ScaleX:     scaleX,
			ScaleY:     scaleY,
			ScaleZ:     scaleZ,
			Padding:    padding,
			PaddingX:   paddingX,
			PaddingY:   paddingY,
			PaddingZ:   paddingZ,
			MinSize:    minSize,
			Exclude:    exclude,
			MergeLinks: mergeLinks,
			Workers:    workers,
		},
		Command:      command,
		Args:         positional,
		Ros:          ros,
		Select:       sel,
		Verbose:      verbose,
		Config:       config,
		Silent:       silent,
		LogTimestamp: logTimestamp,
		Help:         help,
		Version:      version,
		set:          set,
		flagSet:      flagCommand,
	}, nil
}

// requiredPositional is the number of positional arguments each command takes.
var requiredPositional = map[string]int{
	CommandSimplify: 2,
	CommandReport:   1,
}

// expandListFlags lets a list flag take several space separated values, as in
// "--exclude base arm". Values following a list flag are taken by it as long
// as the command keeps its required positional arguments, which are taken from
// the end of the last run. Every taken value is rewritten as its own flag.
func expandListFlags(flagCommand *flag.FlagSet, args []string, listFlags []string, required int) []string {
	isList := map[string]bool{}
	for _, name := range listFlags {
		isList[name] = true
	}

	const (
		positional = iota
		flagToken
		flagValue
		listValue
	)
	kinds := make([]int, len(args))
	var runs [][]int
	positionals := 0
	terminated := false

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if terminated || arg == "-" || !strings.HasPrefix(arg, "-") {
			positionals++
			continue
		}
		kinds[i] = flagToken
		if arg == "--" {
			terminated = true
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") || i+1 >= len(args) {
			continue
		}
		f := flagCommand.Lookup(name)
		if f == nil {
			continue
		}
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			continue
		}

		i++
		kinds[i] = flagValue
		if !isList[name] {
			continue
		}
		var run []int
		for i+1 < len(args) && args[i+1] != "-" && !strings.HasPrefix(args[i+1], "-") {
			i++
			kinds[i] = listValue
			run = append(run, i)
		}
		if len(run) > 0 {
			runs = append(runs, run)
		}
	}

	// give the positional arguments back, starting from the end of the last run
	needed := required - positionals
	for r := len(runs) - 1; r >= 0 && needed > 0; r-- {
		for k := len(runs[r]) - 1; k >= 0 && needed > 0; k-- {
			kinds[runs[r][k]] = positional
			needed--
		}
	}

	out := make([]string, 0, len(args))
	for i, arg := range args {
		if kinds[i] == listValue {
			out = append(out, "--"+listFlags[0], arg)
			continue
		}
		out = append(out, arg)
	}
	return out
}

// parseInterleaved parses args with flagCommand, collecting the positional
// arguments found between flags. Everything after "--" is positional.
func parseInterleaved(flagCommand *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := flagCommand.Parse(args); err != nil {
			return nil, err
		}
		rest := flagCommand.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		// flag.Parse drops the "--" terminator, so a rest that does not start with
		// the next raw argument followed it
		consumed := len(args) - len(rest)
		if consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// PrintDefaults writes the usage of every command flag to w.
func (f *FlagsForCommand) PrintDefaults(w io.Writer) {
	f.flagSet.SetOutput(w)
	f.flagSet.PrintDefaults()
}

// IsSet reports whether the flag called name, or its shorthand, was given.
func (f *FlagsForCommand) IsSet(name string) bool {
	return f.set[name]
}

// Apply copies every explicitly set fit flag into opt, leaving the others to
// the defaults or the config file.
func (f *FlagsForCommand) Apply(opt *simplifier.SimplifierOptions) error {
	opt.Command = f.Command
	if len(f.Args) > 0 {
		opt.Input = f.Args[0]
	}
	if len(f.Args) > 1 {
		opt.Output = f.Args[1]
	}

	if f.IsSet("bbox-type") {
		kind := simplifier.ParseBoxKind(*f.BboxType)
		if kind == "" {
			return &simplifier.InvalidConfigError{Field: "bbox-type", Value: *f.BboxType, Reason: "must be aabb or obb"}
		}
		opt.Fit.Kind = kind
	}
	if f.IsSet("tight-fit") {
		opt.Fit.TightFit = *f.TightFit
	}
	if f.IsSet("scale") {
		opt.Fit.Axis.Scale = *f.Scale
	}
	if f.IsSet("padding") {
		opt.Fit.Axis.Padding = *f.Padding
	}
	for axis, v := range [3]*OptionalFloat64{f.ScaleX, f.ScaleY, f.ScaleZ} {
		if v.Value != nil {
			s := *v.Value
			opt.Fit.Axis.ScaleAxis[axis] = &s
		}
	}
	for axis, v := range [3]*OptionalFloat64{f.PaddingX, f.PaddingY, f.PaddingZ} {
		if v.Value != nil {
			p := *v.Value
			opt.Fit.Axis.PaddingAxis[axis] = &p
		}
	}
	if f.IsSet("min-size") {
		opt.Fit.MinSize = *f.MinSize
	}
	if f.IsSet("exclude") {
		opt.Fit.Exclude = append([]string(nil), (*f.Exclude)...)
	}
	if f.IsSet("merge-links") {
		if *f.MergeLinks {
			opt.Fit.Merge = simplifier.PerLink
		} else {
			opt.Fit.Merge = simplifier.PerEntry
		}
	}
	if f.IsSet("workers") {
		opt.Fit.Workers = *f.Workers
	}
	if f.IsSet("ros") {
		opt.UseRos = *f.Ros
	}
	if f.IsSet("verbose") {
		opt.Verbose = *f.Verbose
	}
	opt.Select = *f.Select
	return nil
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineFloat64FlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flagCommand.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineOptionalFloat64FlagCommand(flagCommand *flag.FlagSet, name string, usage string) *OptionalFloat64 {
	output := &OptionalFloat64{}
	flagCommand.Var(output, name, usage)
	return output
}

func defineStringListFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, usage string) *StringList {
	output := &StringList{}
	flagCommand.Var(output, name, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.Var(output, shortHand, usage+" (shorthand for "+name+")")
	}
	return output
}
