package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/mohdshetty/grap/core"
	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/policy"
	"github.com/mohdshetty/grap/core/submission"
	"github.com/mohdshetty/grap/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf   *core.Config
	out    io.Writer
	usrSvc *user.Service
	dirSvc *directory.Service
	subSvc *submission.Service
	policy *policy.Store
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  gapreport [-year YEAR] [-json]       - university staff gap over approved submissions")
	fmt.Fprintln(cli.out, "  summary [-year YEAR] [-json]         - latest submission of every department")
	fmt.Fprintln(cli.out, "  validate-policy -file PATH           - check a policy file and print the resulting tables")
	fmt.Fprintln(cli.out, "  checklogin -username USERNAME        - check an account's credentials")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	gapReportCmd := flag.NewFlagSet("gapreport", flag.ContinueOnError)
	gapReportYear := gapReportCmd.String("year", cli.conf.AcademicYear, "Academic year, e.g. 2024-2025.")
	gapReportJSON := gapReportCmd.Bool("json", false, "Print JSON instead of a table.")

	summaryCmd := flag.NewFlagSet("summary", flag.ContinueOnError)
	summaryYear := summaryCmd.String("year", "", "Academic year, e.g. 2024-2025. Any year when empty.")
	summaryJSON := summaryCmd.Bool("json", false, "Print JSON instead of a table.")

	validatePolicyCmd := flag.NewFlagSet("validate-policy", flag.ContinueOnError)
	validatePolicyFile := validatePolicyCmd.String("file", "", "The YAML policy document to check.")

	checkLoginCmd := flag.NewFlagSet("checklogin", flag.ContinueOnError)
	checkLoginUname := checkLoginCmd.String("username", "", "The account's username. The password will be prompted next.")

	for _, cmd := range []*flag.FlagSet{gapReportCmd, summaryCmd, validatePolicyCmd, checkLoginCmd} {
		cmd.SetOutput(cli.out)
	}

	switch args[1] {
	case "gapreport":
		if err := gapReportCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.gapReport(*gapReportYear, *gapReportJSON)
	case "summary":
		if err := summaryCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.summary(*summaryYear, *summaryJSON)
	case "validate-policy":
		if err := validatePolicyCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *validatePolicyFile == "" {
			validatePolicyCmd.Usage()
			return errHelp
		}
		return cli.validatePolicy(*validatePolicyFile)
	case "checklogin":
		if err := checkLoginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *checkLoginUname == "" {
			checkLoginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			checkLoginCmd.Usage()
			return errHelp
		}
		return cli.checkLogin(*checkLoginUname, string(pwd))
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) printJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (cli *commandLine) table() *tabwriter.Writer {
	return tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
}
