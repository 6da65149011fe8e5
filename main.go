package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ecopia-map/urdf_simplifier/internal/simplifier"
	"github.com/ecopia-map/urdf_simplifier/pkg"
	"github.com/ecopia-map/urdf_simplifier/pkg/fit_manager/std_fit_manager"
	"github.com/ecopia-map/urdf_simplifier/tools"
	"github.com/golang/glog"
)

const VERSION = "0.3.0"

const logo = `
 _   _ ____  ____  _____       _                 _ _  __ _
| | | |  _ \|  _ \|  ___|  ___(_)_ __ ___  _ __ | (_)/ _(_) ___ _ __
| | | | |_) | | | | |_    / __| | '_ ' _ \| '_ \| | | |_| |/ _ \ '__|
| |_| |  _ <| |_| |  _|   \__ \ | | | | | | |_) | | |  _| |  __/ |
 \___/|_| \_\____/|_|     |___/_|_| |_| |_| .__/|_|_|_| |_|\___|_|
  Replaces URDF collision meshes with boxes |_|
`

func main() {
	// glog writes to files unless told otherwise
	_ = flag.Set("logtostderr", "true")

	flagsGlobal := tools.ParseFlagsGlobal()
	defer glog.Flush()

	if *flagsGlobal.Help {
		showHelp()
		return
	}
	if *flagsGlobal.Version {
		printVersion()
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		glog.Fatal("Please specify a subcommand [simplify|report].")
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case tools.CommandSimplify, tools.CommandReport:
		mainCommand(cmd, args)
	default:
		glog.Fatalf("Unrecognized command [%q]. Command must be one of [simplify|report]", cmd)
	}
}

func mainCommand(cmd string, args []string) {
	// Retrieve command line args
	flags, err := tools.ParseFlagsForCommand(cmd, args)
	if err != nil {
		glog.Fatal("Error parsing input parameters: ", err)
	}

	if *flags.Help {
		showCommandHelp(cmd, &flags)
		return
	}
	if *flags.Version {
		printVersion()
		return
	}

	if *flags.Silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
	if *flags.LogTimestamp {
		tools.EnableLoggerTimestamp()
	}

	// defaults, then the config file, then the flags given on the command line
	opts := simplifier.SimplifierOptions{Fit: simplifier.DefaultFitConfig()}
	if *flags.Config != "" {
		configFile, err := simplifier.LoadConfigFile(*flags.Config)
		if err != nil {
			glog.Fatal(err)
		}
		if err := configFile.Apply(&opts); err != nil {
			glog.Fatal("Error parsing config file: ", err)
		}
	}
	if err := flags.Apply(&opts); err != nil {
		glog.Fatal("Error parsing input parameters: ", err)
	}
	glog.V(1).Infoln("options", tools.FmtJSONString(opts))

	if msg, res := validateOptions(&opts, &flags); !res {
		glog.Fatal("Error parsing input parameters: " + msg)
	}

	var selector tools.Selector
	if opts.Select {
		selector = tools.NewConsoleSelector(os.Stdin, os.Stdout)
	}

	// Starts the simplifier
	defer timeTrack(time.Now(), cmd)
	report, err := pkg.NewSimplifier(std_fit_manager.NewFitManager(&opts), selector).RunSimplifier(&opts)
	if err != nil {
		glog.Fatal("Error while simplifying: ", err)
	}

	if failed := report.Count(pkg.OutcomeError); failed > 0 {
		glog.Warningf("%d collision entries could not be simplified and were left unchanged", failed)
	}
	if opts.DryRun() {
		tools.LogOutput("Report completed")
	} else {
		tools.LogOutput("Simplification completed")
	}
}

// Validates the options checking that the input exists, that the positional
// arguments match the command and that the fit configuration is valid
func validateOptions(opts *simplifier.SimplifierOptions, flags *tools.FlagsForCommand) (string, bool) {
	if opts.Input == "" {
		return "Input urdf not specified", false
	}
	if !tools.FileExists(opts.Input) {
		return "Input urdf not found", false
	}

	switch flags.Command {
	case tools.CommandSimplify:
		if len(flags.Args) != 2 {
			return "simplify expects <input.urdf> <output.urdf>", false
		}
	case tools.CommandReport:
		if len(flags.Args) != 1 {
			return "report expects <input.urdf>", false
		}
	}

	if err := opts.Fit.Validate(); err != nil {
		return err.Error(), false
	}

	return "", true
}

func timeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	tools.LogOutput(fmt.Sprintf("%s took %s", name, elapsed))
}

func printLogo() {
	fmt.Print(logo)
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("urdf_simplifier replaces the mesh collision geometry of URDF robot links with bounding boxes")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  urdf_simplifier [global flags] simplify [flags] <input.urdf> <output.urdf>")
	fmt.Println("  urdf_simplifier [global flags] report [flags] <input.urdf>")
	fmt.Println("")
	fmt.Println("Global flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func showCommandHelp(cmd string, flags *tools.FlagsForCommand) {
	printLogo()
	printVersion()
	fmt.Println("")
	if cmd == tools.CommandSimplify {
		fmt.Println("Usage: urdf_simplifier simplify [flags] <input.urdf> <output.urdf>")
	} else {
		fmt.Println("Usage: urdf_simplifier report [flags] <input.urdf>")
	}
	fmt.Println("")
	fmt.Println("Command line flags: ")
	flags.PrintDefaults(os.Stdout)
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
