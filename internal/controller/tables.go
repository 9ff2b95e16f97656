package controller

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"

	m "forgemut.dev/pkg/forgemut/internal/model"
)

func renderCorpusTable(entries []m.CorpusEntry) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Mutant", "Target", "Base name", "Decision"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
	})

	toTest := 0

	for _, entry := range entries {
		table.Append([]string{entry.ID.String(), string(entry.Target), entry.BaseName, entry.Decision})

		if entry.Decision == DecisionTest {
			toTest++
		}
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total %d", len(entries)),
		"",
		"",
		fmt.Sprintf("%d to test", toTest),
	})

	table.Render()

	return tableBuffer.String()
}

func renderReportTable(report m.RunReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Mutant", "Target", "Status"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, record := range report.Mutants {
		table.Append([]string{record.ID.String(), string(record.Target), record.Status})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total %d", report.Total),
		fmt.Sprintf("killed %d, survived %d, skipped %d", report.Killed, report.Survived, report.Skipped),
		report.Score,
	})

	table.Render()

	return tableBuffer.String()
}

func renderReportHeader(report m.RunReport) string {
	return fmt.Sprintf("Run %s\nStarted %s, finished %s\nCommand: %s\n",
		report.RunID,
		report.StartedAt.Format("2006-01-02 15:04:05"),
		report.FinishedAt.Format("2006-01-02 15:04:05"),
		report.Command,
	)
}
