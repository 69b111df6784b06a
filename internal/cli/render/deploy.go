package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/plinth-labs/plinth/internal/domain/models"
	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	sectionHeaderStyle = color.New(color.Bold, color.FgHiWhite)
	nameStyle          = color.New(color.FgCyan, color.Bold)
	addressStyle       = color.New(color.FgWhite)
	hashStyle          = color.New(color.Faint)
	verifiedStyle      = color.New(color.FgGreen)
	failedStyle        = color.New(color.FgRed)
)

// DeployRenderer renders the result of a manifest run
type DeployRenderer struct {
	out   io.Writer
	color bool
	json  bool
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer, color, json bool) *DeployRenderer {
	return &DeployRenderer{out: out, color: color, json: json}
}

// Render prints the deployed contracts, links and verifications
func (r *DeployRenderer) Render(result *models.DeploymentResult) error {
	if r.json {
		return writeJSON(r.out, result)
	}

	color.NoColor = !r.color

	if len(result.Contracts) == 0 {
		fmt.Fprintln(r.out, "No contracts deployed")
		return nil
	}

	sectionHeaderStyle.Fprintf(r.out, "Contracts (%s)\n", result.Manifest)
	fmt.Fprintln(r.out, contractsTable(result.Contracts))

	if len(result.Links) > 0 {
		fmt.Fprintln(r.out)
		sectionHeaderStyle.Fprintln(r.out, "Links")
		for _, link := range result.Links {
			fmt.Fprintf(r.out, "  %s.%s  %s\n", link.Target, link.Method, hashStyle.Sprint(link.TxHash))
		}
	}

	if len(result.Verifications) > 0 {
		fmt.Fprintln(r.out)
		sectionHeaderStyle.Fprintln(r.out, "Verification")
		for _, report := range result.Verifications {
			fmt.Fprintln(r.out, "  "+verificationLine(report))
		}
	}

	if len(result.Records) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintf(r.out, "%d addresses recorded\n", len(result.Records))
	}
	return nil
}

// VerifyRenderer renders a single verification report
type VerifyRenderer struct {
	out   io.Writer
	color bool
	json  bool
}

// NewVerifyRenderer creates a new verify renderer
func NewVerifyRenderer(out io.Writer, color, json bool) *VerifyRenderer {
	return &VerifyRenderer{out: out, color: color, json: json}
}

func (r *VerifyRenderer) Render(report *models.VerificationReport) error {
	if r.json {
		return writeJSON(r.out, report)
	}
	color.NoColor = !r.color
	fmt.Fprintln(r.out, verificationLine(report))
	return nil
}

func contractsTable(contracts []*models.DeployedContract) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateRows = false
	t.Style().Options.SeparateColumns = false
	t.Style().Box = table.BoxStyle{PaddingLeft: "  ", PaddingRight: " "}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft},
	})

	t.AppendRows(lo.Map(contracts, func(c *models.DeployedContract, _ int) table.Row {
		source := hashStyle.Sprint("attached")
		if !c.Attached {
			source = hashStyle.Sprint(shortHash(c.TxHash))
		}
		return table.Row{nameStyle.Sprint(c.Name), addressStyle.Sprint(c.Address), source}
	}))
	return t.Render()
}

func verificationLine(report *models.VerificationReport) string {
	label := outcomeLabel(report.Outcome)
	line := fmt.Sprintf("%s %s", report.Name, report.Address)
	if report.URL != "" {
		line += "  " + report.URL
	}
	if report.Outcome.Succeeded() {
		return verifiedStyle.Sprint("✓ "+label) + "  " + line
	}
	return failedStyle.Sprint("✗ "+label) + "  " + line
}

// outcomeLabel turns ALREADY_VERIFIED into "Already verified"
func outcomeLabel(outcome models.VerificationOutcome) string {
	words := strings.ToLower(strings.ReplaceAll(string(outcome), "_", " "))
	return cases.Title(language.English, cases.NoLower).String(words[:1]) + words[1:]
}

func shortHash(hash string) string {
	if len(hash) <= 18 {
		return hash
	}
	return hash[:10] + "..." + hash[len(hash)-6:]
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
