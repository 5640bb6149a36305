package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/upd/internal/infrastructure/repositories"
)

// Audit is the interface for the audit command.
type Audit interface {
	Execute(ctx context.Context, opts AuditOptions) error
}

// AuditOptions holds runtime options for an audit run.
type AuditOptions struct {
	Paths    []string
	Langs    []entities.Lang
	Check    bool
	Verbose  bool
	Output   io.Writer
	Progress Progress
}

// AuditCommand checks every declared package version against OSV.
type AuditCommand struct {
	updaters        *infraRepos.UpdaterRegistry
	discovery       repositories.FileDiscoveryRepository
	vulnerabilities repositories.VulnerabilityRepository
}

// NewAuditCommand creates a new AuditCommand.
func NewAuditCommand(
	updaters *infraRepos.UpdaterRegistry,
	discovery repositories.FileDiscoveryRepository,
	vulnerabilities repositories.VulnerabilityRepository,
) *AuditCommand {
	return &AuditCommand{updaters: updaters, discovery: discovery, vulnerabilities: vulnerabilities}
}

// Execute audits the declared dependencies of every discovered file.
func (it *AuditCommand) Execute(ctx context.Context, opts AuditOptions) error {
	out := writerOr(opts.Output)

	files, err := it.discovery.Discover(defaultPaths(opts.Paths), opts.Langs)
	if err != nil {
		return fmt.Errorf("failed to discover dependency files: %w", err)
	}
	occurrences := scanOccurrences(out, it.updaters, files)
	packages := entities.UniqueAuditPackages(occurrences)
	if len(packages) == 0 {
		fmt.Fprintln(out, warnStyle.Sprint("No dependencies found to audit."))
		return nil
	}
	if opts.Verbose {
		fmt.Fprintln(out, infoStyle.Sprintf("Auditing %d package(s) from %d file(s)", len(packages), len(files)))
	}

	progress := progressOr(opts.Progress)
	progress.Start(fmt.Sprintf("Querying OSV for %d package(s)...", len(packages)))
	result, err := it.vulnerabilities.CheckPackages(ctx, packages)
	progress.Stop()
	if err != nil {
		return fmt.Errorf("vulnerability check failed: %w", err)
	}

	printAudit(out, result)

	if opts.Check && len(result.Vulnerable) > 0 {
		return entities.ErrChecksFailed
	}
	return nil
}

func printAudit(out io.Writer, result entities.AuditResult) {
	for _, pkg := range result.Vulnerable {
		fmt.Fprintf(out, "%s %s (%s)\n",
			nameStyle.Sprint(pkg.Package.Name), oldStyle.Sprint(pkg.Package.Version), pkg.Package.Lang.Ecosystem())
		for _, vuln := range pkg.Vulnerabilities {
			severity := ""
			if vuln.Severity != "" {
				severity = majorStyle.Sprintf(" [%s]", vuln.Severity)
			}
			fmt.Fprintf(out, "  %s%s %s\n", errorStyle.Sprint(vuln.ID), severity, vuln.Summary)
			if vuln.FixedVersion != "" {
				fmt.Fprintf(out, "    Fixed in: %s\n", newStyle.Sprint(vuln.FixedVersion))
			}
			if vuln.URL != "" {
				fmt.Fprintf(out, "    %s\n", locationStyle.Sprint(vuln.URL))
			}
		}
	}

	for _, e := range result.Errors {
		fmt.Fprintf(out, "%s %s\n", errorStyle.Sprint("Error:"), e)
	}

	fmt.Fprintln(out)
	if len(result.Vulnerable) == 0 {
		fmt.Fprintf(out, "%s No known vulnerabilities in %d package(s)\n", actionStyle.Sprint(checkMark), result.SafeCount)
		return
	}
	fmt.Fprintf(out, "Found %s vulnerabilit(ies) in %d package(s), %d package(s) safe\n",
		errCountStyle.Sprint(result.TotalVulnerabilities()), len(result.Vulnerable), result.SafeCount)
}
