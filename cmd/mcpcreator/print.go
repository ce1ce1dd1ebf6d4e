package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/PentesterFlow/mcpcreator/internal/output"
	"github.com/PentesterFlow/mcpcreator/internal/state"
	"github.com/PentesterFlow/mcpcreator/pkg/creator"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("81"))

	methodStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))
)

const ruleWidth = 60

func printBanner(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
	fmt.Fprintln(w, titleStyle.Render(title))
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
}

func printSection(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, sectionStyle.Render(title))
	fmt.Fprintln(w, strings.Repeat("-", 40))
}

func printReport(w io.Writer, title string, r *output.Report) {
	printBanner(w, title)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Service Name:       %s\n", r.ServiceName)
	fmt.Fprintf(w, "Suggested MCP Name: %s\n", r.MCPName)
	fmt.Fprintf(w, "Base URL:           %s\n", r.BaseURL)
	if r.Description != "" {
		fmt.Fprintf(w, "Description:        %s\n", r.Description)
	}

	printSection(w, "Authentication Patterns Discovered")
	if len(r.AuthPatterns) == 0 {
		fmt.Fprintln(w, "  No authentication patterns detected in HAR file.")
		fmt.Fprintln(w, "  You can configure authentication via environment variables.")
	}
	for _, auth := range r.AuthPatterns {
		fmt.Fprintf(w, "  - Type: %s\n", auth.Type)
		fmt.Fprintf(w, "    Header: %s\n", auth.Header)
		fmt.Fprintf(w, "    Location: %s\n", auth.Location)
	}

	printSection(w, fmt.Sprintf("API Endpoints (%d found)", len(r.Endpoints)))
	for _, ep := range r.Endpoints {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s %s\n", methodStyle.Render(ep.Method), ep.Path)
		fmt.Fprintf(w, "  Tool name: %s\n", ep.ToolName)
		if len(ep.PathParams) > 0 {
			fmt.Fprintf(w, "  Path params: %s\n", strings.Join(ep.PathParams, ", "))
		}
		if len(ep.QueryParams) > 0 {
			fmt.Fprintf(w, "  Query params: %s\n", strings.Join(ep.QueryParams, ", "))
		}
		if ep.HasBody {
			fmt.Fprintln(w, "  Has request body: Yes")
		}
		if ep.HasResponseExample {
			fmt.Fprintln(w, "  Has response example: Yes")
		}
	}

	if r.Stats != nil {
		printStats(w, r.Stats)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
}

func printStats(w io.Writer, s *state.Stats) {
	printSection(w, "Records")
	fmt.Fprintf(w, "  Seen:       %d\n", s.RecordsSeen)
	fmt.Fprintf(w, "  Relevant:   %d\n", s.RecordsRelevant)
	fmt.Fprintf(w, "  Merged:     %d\n", s.Merges)
	fmt.Fprintf(w, "  Redactions: %d\n", s.Redactions)

	reasons := make([]string, 0, len(s.RecordsSkipped))
	for reason := range s.RecordsSkipped {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(w, "  %s\n", dimStyle.Render(fmt.Sprintf("Skipped (%s): %d", reason, s.RecordsSkipped[reason])))
	}
}

func printCreateSummary(w io.Writer, res *creator.Result, outputDir string) {
	fmt.Fprintf(w, "  Service:   %s\n", res.Model.Name)
	fmt.Fprintf(w, "  MCP Name:  %s\n", res.ServerName())
	fmt.Fprintf(w, "  Base URL:  %s\n", res.Model.BaseURL)
	fmt.Fprintf(w, "  Endpoints: %d\n", len(res.Model.Endpoints))
	fmt.Fprintf(w, "  Output:    %s\n", outputDir)

	printBanner(w, successStyle.Render("MCP Server Generated Successfully!"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Server directory: %s\n", res.ServerDir)
	fmt.Fprintf(w, "Files written:    %d\n", len(res.Files))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintf(w, "  1. cd %s\n", res.ServerDir)
	fmt.Fprintln(w, "  2. Copy .env.example to .env and configure authentication")
	fmt.Fprintf(w, "     (variables are prefixed %s_)\n", res.EnvPrefix())
	fmt.Fprintln(w, "  3. Install dependencies: uv sync")
	fmt.Fprintf(w, "  4. Run the server: uv run %s\n", res.ServerName())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "See README.md for full documentation.")
}

func printSnapshot(w io.Writer, path string, snap *state.Snapshot, prefix string) {
	report := output.NewReport(&snap.Model, prefix).WithRun(snap.RunID, &snap.Stats)

	printBanner(w, "Saved Analysis: "+path)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run ID:  %s\n", snap.RunID)
	fmt.Fprintf(w, "Source:  %s\n", snap.Source)
	fmt.Fprintf(w, "Created: %s\n", snap.CreatedAt.Format(time.RFC3339))

	printReport(w, "HAR Analysis: "+snap.Source, report)
}
