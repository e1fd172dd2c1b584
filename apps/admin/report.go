package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mohdshetty/grap/core"
	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/gap"
)

func (cli *commandLine) gapReport(year string, asJSON bool) error {
	if !core.IsAcademicYear(year) {
		return errors.Errorf("invalid academic year %q", year)
	}
	subs, err := cli.subSvc.QueryAll()
	if err != nil {
		return err
	}
	report := gap.UniversityGapReport(subs, cli.policy.Requirements(), year)
	if asJSON {
		return cli.printJSON(report)
	}

	fmt.Fprintf(cli.out, "Academic year %s, %d department(s) approved\n\n", report.AcademicYear, report.Departments)
	w := cli.table()
	fmt.Fprintln(w, "RANK\tREQUIRED\tCURRENT\tGAP\tGAP %")
	for _, row := range report.Rows {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1f\n", row.Rank, row.Required, row.Current, row.Gap, row.PercentGap)
	}
	return w.Flush()
}

func (cli *commandLine) summary(year string, asJSON bool) error {
	if year != "" && !core.IsAcademicYear(year) {
		return errors.Errorf("invalid academic year %q", year)
	}
	faculties, err := cli.dirSvc.QueryFaculties(false)
	if err != nil {
		return err
	}
	depts, err := cli.dirSvc.QueryDepartments(directory.QueryFilter{})
	if err != nil {
		return err
	}
	subs, err := cli.subSvc.QueryAll()
	if err != nil {
		return err
	}
	rows := gap.SummaryReport(faculties, depts, subs, year)
	if asJSON {
		return cli.printJSON(rows)
	}

	w := cli.table()
	fmt.Fprintln(w, "FACULTY\tDEPARTMENT\tSTAFF\tSTATUS")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", row.FacultyName, row.DepartmentName, row.TotalStaff, row.Status)
	}
	return w.Flush()
}
