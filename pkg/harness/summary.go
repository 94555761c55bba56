package harness

import (
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/openwpan/hiltest/pkg/result"
)

const summaryWidth = 70

// printSummary emits the pass/fail summary twice: a dotted plain-text block
// through the framework logger (so it lands in the log file verbatim) and a
// colored table on the console writer for operators.
func (s *Session) printSummary() {
	line := strings.Repeat("=", summaryWidth)

	s.log.Info(line)
	s.log.Info(strings.Repeat("=", 29) + " SUMMARY " + strings.Repeat("=", 31))
	s.log.Info(line)

	for _, suiteName := range s.ledger.Classes() {
		s.log.Info(suiteName)

		sr, _ := s.ledger.Lookup(suiteName)
		for _, test := range sr.Tests() {
			rec, _ := sr.Record(test)
			s.log.Info(summaryLine(test, string(rec.Outcome())))
		}
	}

	s.log.Info(line)

	s.renderSummaryTable()
}

// summaryLine renders "    name.......OUTCOME" padded with dots to the
// summary width.
func summaryLine(test, outcome string) string {
	label := "    " + test
	if pad := 34 - len(label); pad > 0 {
		label += strings.Repeat(".", pad)
	}
	if pad := (summaryWidth - 2) - len(label) - len(outcome); pad > 0 {
		outcome = strings.Repeat(".", pad) + outcome
	}
	return label + outcome
}

func (s *Session) renderSummaryTable() {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	table := tablewriter.NewWriter(s.out)
	table.SetHeader([]string{"Suite", "Test", "Result"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, suiteName := range s.ledger.Classes() {
		sr, _ := s.ledger.Lookup(suiteName)

		if sr.SetupClassFailed() && len(sr.Tests()) == 0 {
			table.Append([]string{suiteName, "-", red.Sprint("FAILED SETUPCLASS")})
			continue
		}

		for _, test := range sr.Tests() {
			rec, _ := sr.Record(test)
			outcome := string(rec.Outcome())
			if rec.Outcome() == result.OutcomePass {
				outcome = green.Sprint(outcome)
			} else {
				outcome = red.Sprint(outcome)
			}
			table.Append([]string{suiteName, test, outcome})
		}
	}

	table.Render()
}

// printSetupBanner calls out a class-setup failure loudly so bench
// operators check cabling and claimed resources before rerunning.
func (s *Session) printSetupBanner(suiteName string) {
	line := strings.Repeat("=", summaryWidth)

	s.log.Info(line)
	s.log.Info(strings.Repeat("=", 20) + " CHECK HARDWARE CONFIGURATION " + strings.Repeat("=", 19))
	s.log.Info(line)

	label := suiteName
	if pad := 34 - len(label); pad > 0 {
		label += strings.Repeat(".", pad)
	}
	verdict := "FAILED SETUPCLASS"
	if pad := 34 - len(verdict); pad > 0 {
		verdict = strings.Repeat(".", pad) + verdict
	}
	s.log.Info(label + verdict)
	s.log.Info(line)
}
