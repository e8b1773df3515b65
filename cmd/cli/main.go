package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"neuromorph/adapters/excel"
	"neuromorph/adapters/stats/engine"
	"neuromorph/app"
	"neuromorph/domain/comparison"
	"neuromorph/domain/core"
	"neuromorph/domain/measurement"
	"neuromorph/internal/api"
	"neuromorph/internal/config"
	"neuromorph/internal/container"
	apperrors "neuromorph/internal/errors"
)

var (
	databaseURL string
	profilePath string

	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "neuromorph",
		Short:         "Import morphology measurements and compare conditions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database", "", "Database path or postgres:// URL (default from DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "YAML analysis profile")

	rootCmd.AddCommand(
		newImportCmd(),
		newStatsCmd(),
		newExportCmd(),
		newRepresentativeCmd(),
		newDensityCmd(),
		newListCmd(),
		newDeleteCmd(),
		newProfileCmd(),
	)
	return rootCmd
}

// loadProfile returns the --profile file or the default profile
func loadProfile() (*config.Profile, error) {
	if profilePath == "" {
		p := config.DefaultProfile()
		return &p, nil
	}
	return config.LoadProfile(profilePath)
}

// loadConfig applies the --database flag and profile on top of the environment
func loadConfig(profile *config.Profile) (*config.Config, error) {
	if databaseURL != "" {
		driver := config.DriverSQLite
		if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
			driver = config.DriverPostgres
		}
		os.Setenv("DATABASE_DRIVER", driver)
		os.Setenv("DATABASE_URL", databaseURL)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if profilePath != "" {
		ec := profile.EngineConfig()
		cfg.Stats.Alpha = ec.Alpha
		cfg.Stats.NormalityMethod = ec.NormalityMethod
		cfg.Stats.EqualVariance = ec.EqualVariance
	}
	return cfg, nil
}

func openContainer(ctx context.Context, profile *config.Profile) (*container.Container, error) {
	cfg, err := loadConfig(profile)
	if err != nil {
		return nil, err
	}
	return container.Open(ctx, cfg)
}

// resolveAssay accepts a numeric id or an assay name
func resolveAssay(ctx context.Context, c *container.Container, ref string) (*measurement.Assay, error) {
	if ref == "" {
		return nil, core.NewValidationError("assay", "--assay is required")
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return c.MeasurementRepo.GetAssay(ctx, id)
	}
	return c.MeasurementRepo.GetAssayByName(ctx, ref)
}

// parseForced maps auto|true|false to the forced-parametric switch
func parseForced(s string) (*bool, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, core.NewValidationError("parametric", "expected auto, true or false")
	}
	return &b, nil
}

// compareRequest merges flags over the profile selection
func compareRequest(profile *config.Profile, parameters, conditions []string, parametric, normality string) (app.CompareRequest, error) {
	req := app.CompareRequest{
		Parameters: parameters,
		Conditions: conditions,
		Forced:     profile.ForcedParametric(),
	}
	if len(req.Parameters) == 0 {
		req.Parameters = profile.Parameters
	}
	if len(req.Conditions) == 0 {
		req.Conditions = profile.Conditions
	}
	if parametric != "" {
		forced, err := parseForced(parametric)
		if err != nil {
			return req, err
		}
		req.Forced = forced
	}
	if normality != "" {
		m := comparison.NormalityMethod(normality)
		if !m.Valid() {
			return req, core.NewValidationError("normality", "expected shapiro or kstest")
		}
		req.Normality = m
	}
	return req, nil
}

func newImportCmd() *cobra.Command {
	var req app.ImportRequest

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import measurement files into an assay",
		Long: `Import CSV, JSON or XLSX measurement files named
<experiment>_<Condition>_<image>[L|T].<ext>. The condition is taken from the
file name. Files already imported into the assay are skipped.

Example: neuromorph import --assay spines --dir ./data --dataset L --parameters Area,Length`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Paths = args
			if req.Directory == "" && len(req.Paths) == 0 {
				return core.NewValidationError("files", "give --dir or at least one file")
			}
			profile, err := loadProfile()
			if err != nil {
				return err
			}
			if len(req.Parameters) == 0 {
				req.Parameters = profile.Parameters
			}

			c, err := openContainer(cmd.Context(), profile)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			res, err := c.Imports.Import(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s\n", cyan("=== Import ==="))
			fmt.Printf("Assay:      %s (id %d)\n", res.Assay.Name, res.Assay.ID)
			fmt.Printf("Files:      %s\n", green(res.Files))
			fmt.Printf("Rows:       %d\n", res.Rows)
			for _, d := range res.Duplicates {
				fmt.Printf("  %s %s already imported\n", yellow("○"), d)
			}
			for _, f := range res.Failures {
				fmt.Printf("  %s %v\n", red("✗"), f.Err)
			}
			if res.Files == 0 && len(res.Failures) > 0 {
				return fmt.Errorf("no file could be imported")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Assay, "assay", "", "Assay name (created on first import)")
	cmd.Flags().StringVar(&req.Description, "description", "", "Assay description")
	cmd.Flags().StringVar(&req.Directory, "dir", "", "Directory to scan for measurement files")
	cmd.Flags().StringSliceVar(&req.Parameters, "parameters", nil, "Parameters to import (default all numeric columns)")
	cmd.Flags().StringVar(&req.Dataset, "dataset", "", "Dataset marker to import: L or T")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var (
		assay      string
		parameters []string
		conditions []string
		parametric string
		normality  string
		format     string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Compare conditions for each parameter of an assay",
		Long: `Run the comparison pipeline for each selected parameter:
normality testing, test selection, main test and post-hoc comparisons.

Example: neuromorph stats --database neuromorph.db --assay 1 --parameters Area,Length`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			profile, err := loadProfile()
			if err != nil {
				return err
			}
			req, err := compareRequest(profile, parameters, conditions, parametric, normality)
			if err != nil {
				return err
			}

			c, err := openContainer(ctx, profile)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			a, err := resolveAssay(ctx, c, assay)
			if err != nil {
				return err
			}
			batch, err := c.Comparisons.CompareAssay(ctx, a.ID, req)
			if err != nil {
				return err
			}

			if len(batch.Parameters) == 0 {
				return fmt.Errorf("no parameter could be compared for assay %q (skipped: %s, failed: %d)",
					a.Name, strings.Join(batch.Skipped, ", "), len(batch.Failures))
			}

			if output != "" {
				if !cmd.Flags().Changed("format") {
					format = formatFromPath(output)
				}
				if err := writeBatchFile(output, format, a, batch); err != nil {
					return err
				}
				fmt.Printf("%s %d parameters written to %s\n", green("✓"), len(batch.Parameters), output)
				return nil
			}

			switch format {
			case "markdown":
				for _, p := range batch.Parameters {
					fmt.Println(engine.FormatMarkdown(batch.Reports[p]))
				}
			case "json":
				return printJSON(api.NewBatchDTO(core.NewID().String(), a.ID, batch))
			default:
				printBatch(a, batch)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&assay, "assay", "", "Assay id or name")
	cmd.Flags().StringSliceVar(&parameters, "parameters", nil, "Parameters to compare (default all)")
	cmd.Flags().StringSliceVar(&conditions, "conditions", nil, "Conditions to include (default all)")
	cmd.Flags().StringVar(&parametric, "parametric", "", "auto, true or false (default from profile)")
	cmd.Flags().StringVar(&normality, "normality", "", "Normality test: shapiro or kstest")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, markdown or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write results to this file (format from .json or .md extension unless --format is set)")
	return cmd
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".md", ".markdown":
		return "markdown"
	}
	return "text"
}

// writeBatchFile writes plain output, without terminal colours
func writeBatchFile(path, format string, a *measurement.Assay, batch *comparison.BatchReport) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.ExportFailed(path, err)
	}
	defer f.Close()

	switch format {
	case "markdown":
		_, err = io.WriteString(f, api.BatchMarkdown(a.Name, batch))
	case "json":
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(api.NewBatchDTO(core.NewID().String(), a.ID, batch))
	default:
		var b strings.Builder
		for _, p := range batch.Parameters {
			b.WriteString(engine.FormatSummary(batch.Reports[p]))
			b.WriteString("\n")
		}
		b.WriteString(engine.FormatBatchSummary(batch))
		_, err = io.WriteString(f, b.String())
	}
	if err != nil {
		return apperrors.ExportFailed(path, err)
	}
	return f.Close()
}

func printBatch(a *measurement.Assay, batch *comparison.BatchReport) {
	fmt.Printf("\n%s\n", cyan(fmt.Sprintf("=== %s ===", a.Name)))
	for _, p := range batch.Parameters {
		r := batch.Reports[p]
		m := r.MainTest
		sig := gray("No")
		if m.Significant {
			sig = green("Yes")
		}
		fmt.Printf("\n%s\n", bold(p))
		fmt.Printf("  Test:        %s\n", m.TestName)
		fmt.Printf("  Statistic:   %.4f\n", m.Statistic)
		fmt.Printf("  P-value:     %.4e %s\n", m.PValue, comparison.Stars(m.PValue))
		fmt.Printf("  Significant: %s\n", sig)
		if es, ok := m.EffectSize(); ok {
			fmt.Printf("  %s: %.3f\n", m.EffectSizeName(), es)
		}
		for _, ph := range r.PostHoc {
			mark := gray("·")
			if ph.Significant {
				mark = green("*")
			}
			fmt.Printf("    %s %s vs %s: diff=%.3f p=%.4e\n", mark, ph.Group1, ph.Group2, ph.MeanDifference, ph.PValue)
		}
	}
	fmt.Println()
	fmt.Print(engine.FormatBatchSummary(batch))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newExportCmd() *cobra.Command {
	var (
		assay      string
		output     string
		parameters []string
		conditions []string
		parametric string
		sheets     []string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the statistics workbook for an assay",
		Long: `Compare an assay and write Summary, Anova and Pairwise sheets to an
XLSX workbook.

Example: neuromorph export --assay spines --output spines_stats.xlsx --sheets summary,pairwise`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			profile, err := loadProfile()
			if err != nil {
				return err
			}
			req, err := compareRequest(profile, parameters, conditions, parametric, "")
			if err != nil {
				return err
			}
			selected := excel.Sheets{
				Summary:  profile.Export.Summary,
				Anova:    profile.Export.Anova,
				Pairwise: profile.Export.Pairwise,
			}
			if len(sheets) > 0 {
				if selected, err = parseSheets(sheets); err != nil {
					return err
				}
			}

			c, err := openContainer(ctx, profile)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			a, err := resolveAssay(ctx, c, assay)
			if err != nil {
				return err
			}
			if output == "" {
				output = a.Name + "_statistics.xlsx"
			}
			batch, err := c.Comparisons.ExportAssay(ctx, a.ID, req, output, selected)
			if err != nil {
				return err
			}
			fmt.Printf("%s %d parameters written to %s\n", green("✓"), len(batch.Parameters), output)
			if len(batch.Skipped) > 0 {
				fmt.Printf("  %s skipped: %s\n", yellow("○"), strings.Join(batch.Skipped, ", "))
			}
			for _, f := range batch.Failures {
				fmt.Printf("  %s %s: %v\n", red("✗"), f.Parameter, f.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&assay, "assay", "", "Assay id or name")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .xlsx path (default <assay>_statistics.xlsx)")
	cmd.Flags().StringSliceVar(&parameters, "parameters", nil, "Parameters to compare (default all)")
	cmd.Flags().StringSliceVar(&conditions, "conditions", nil, "Conditions to include (default all)")
	cmd.Flags().StringVar(&parametric, "parametric", "", "auto, true or false (default from profile)")
	cmd.Flags().StringSliceVar(&sheets, "sheets", nil, "Sheets to write: summary, anova, pairwise (default from profile)")
	return cmd
}

func parseSheets(names []string) (excel.Sheets, error) {
	var s excel.Sheets
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "summary":
			s.Summary = true
		case "anova":
			s.Anova = true
		case "pairwise":
			s.Pairwise = true
		default:
			return s, core.NewValidationError("sheets", fmt.Sprintf("unknown sheet %q", n))
		}
	}
	return s, nil
}

func newRepresentativeCmd() *cobra.Command {
	var (
		assay      string
		parameters []string
		top        int
		normalize  bool
		output     string
	)

	cmd := &cobra.Command{
		Use:   "representative",
		Short: "Rank the files closest to each condition average",
		Long: `Average each file's measurements per parameter and rank the files of
every condition by their Euclidean distance from the condition average.
Rank 1 is the most representative image.

Example: neuromorph representative --assay spines --parameters Area,Length --top 3 -o representative.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if top < 1 {
				return core.NewValidationError("top", "must be at least 1")
			}
			profile, err := loadProfile()
			if err != nil {
				return err
			}
			if len(parameters) == 0 {
				parameters = profile.Parameters
			}

			c, err := openContainer(ctx, profile)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			a, err := resolveAssay(ctx, c, assay)
			if err != nil {
				return err
			}
			res, err := c.Morphology.RepresentativeFiles(ctx, a.ID, parameters, normalize)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s\n", cyan("=== Representative files ==="))
			fmt.Printf("Parameters: %s\n", strings.Join(res.Parameters, ", "))
			var records [][]string
			for _, cond := range res.Conditions {
				fmt.Printf("\n%s\n", bold(cond))
				for _, f := range res.Top(cond, top) {
					fmt.Printf("  %d. %s %s\n", f.Rank, f.File, gray(fmt.Sprintf("(distance: %.4f)", f.Distance)))
					records = append(records, []string{
						f.Condition, f.File,
						strconv.FormatFloat(f.Distance, 'g', -1, 64),
						strconv.Itoa(f.Measurements),
						strconv.Itoa(f.Rank),
					})
				}
			}

			if output != "" {
				header := []string{"condition", "file", "distance_from_average", "n_measurements", "rank"}
				if err := writeCSV(output, header, records); err != nil {
					return err
				}
				fmt.Printf("\n%s %d files written to %s\n", green("✓"), len(records), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&assay, "assay", "", "Assay id or name")
	cmd.Flags().StringSliceVar(&parameters, "parameters", nil, "Parameters to rank on (default all)")
	cmd.Flags().IntVarP(&top, "top", "n", 3, "Files to keep per condition")
	cmd.Flags().BoolVar(&normalize, "normalize", true, "Z-score parameters before measuring distance")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the ranking to this CSV file")
	return cmd
}

func newDensityCmd() *cobra.Command {
	var (
		assay    string
		area     float64
		perImage bool
		output   string
	)

	cmd := &cobra.Command{
		Use:   "density",
		Short: "Count structures per image and report densities",
		Long: `Count the measured structures (rows) of each image and divide by the
image area. Conditions report the pooled density over all their images.

Example: neuromorph density --assay spines --area 12.2647 --per-image`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			profile, err := loadProfile()
			if err != nil {
				return err
			}
			c, err := openContainer(ctx, profile)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			a, err := resolveAssay(ctx, c, assay)
			if err != nil {
				return err
			}
			res, err := c.Morphology.Density(ctx, a.ID, area)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s\n", cyan("=== Density ==="))
			fmt.Printf("Image area: %.4f µm²\n", res.Area)
			for _, cd := range res.Conditions {
				fmt.Printf("\n%s\n", bold(cd.Condition))
				fmt.Printf("  Images:  %d\n", cd.Images)
				fmt.Printf("  Count:   %d\n", cd.Count)
				fmt.Printf("  Density: %.6f /µm²\n", cd.Density)
				fmt.Printf("  Density: %.2f /mm²\n", cd.PerMM2)
				if !math.IsNaN(cd.SD) {
					fmt.Printf("  Per image: %.6f ± %.6f /µm²\n", cd.Mean, cd.SD)
				}
			}
			if perImage {
				fmt.Println()
				for _, img := range res.Images {
					fmt.Printf("  %s %s: %d %s\n", gray(img.Condition), img.File, img.Count, gray(fmt.Sprintf("(%.6f /µm²)", img.Density)))
				}
			}

			if output != "" {
				header := []string{"condition", "file", "count", "area_um2", "density", "density_per_mm2", "density_per_100um2"}
				records := make([][]string, 0, len(res.Images))
				for _, img := range res.Images {
					records = append(records, []string{
						img.Condition, img.File, strconv.Itoa(img.Count),
						strconv.FormatFloat(img.Area, 'g', -1, 64),
						strconv.FormatFloat(img.Density, 'g', -1, 64),
						strconv.FormatFloat(img.PerMM2, 'g', -1, 64),
						strconv.FormatFloat(img.Per100UM2, 'g', -1, 64),
					})
				}
				if err := writeCSV(output, header, records); err != nil {
					return err
				}
				fmt.Printf("\n%s %d images written to %s\n", green("✓"), len(records), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&assay, "assay", "", "Assay id or name")
	cmd.Flags().Float64Var(&area, "area", app.DefaultImageArea, "Image area in µm²")
	cmd.Flags().BoolVar(&perImage, "per-image", false, "Also list every image")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write per-image densities to this CSV file")
	return cmd
}

func writeCSV(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.ExportFailed(path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return apperrors.ExportFailed(path, err)
	}
	if err := w.WriteAll(records); err != nil {
		return apperrors.ExportFailed(path, err)
	}
	return f.Close()
}

func newDeleteCmd() *cobra.Command {
	var assay string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an assay and all of its measurements",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			profile, err := loadProfile()
			if err != nil {
				return err
			}
			c, err := openContainer(ctx, profile)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			a, err := resolveAssay(ctx, c, assay)
			if err != nil {
				return err
			}
			rows, err := c.MeasurementRepo.MeasurementCount(ctx, a.ID)
			if err != nil {
				return err
			}
			if err := c.MeasurementRepo.DeleteAssay(ctx, a.ID); err != nil {
				return err
			}
			fmt.Printf("%s deleted assay %s (id %d, %d rows)\n", green("✓"), a.Name, a.ID, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&assay, "assay", "", "Assay id or name")
	return cmd
}

func newListCmd() *cobra.Command {
	var assay string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assays, or the parameters and conditions of one assay",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			profile, err := loadProfile()
			if err != nil {
				return err
			}
			c, err := openContainer(ctx, profile)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			if assay == "" {
				assays, err := c.MeasurementRepo.ListAssays(ctx)
				if err != nil {
					return err
				}
				if len(assays) == 0 {
					fmt.Printf("  %s\n", gray("No assays"))
					return nil
				}
				for _, a := range assays {
					fmt.Printf("  %s %s  %s\n", cyan(fmt.Sprintf("%4d", a.ID)), a.Name, gray(a.CreatedAt.Format("2006-01-02 15:04")))
				}
				return nil
			}

			a, err := resolveAssay(ctx, c, assay)
			if err != nil {
				return err
			}
			params, err := c.MeasurementRepo.Parameters(ctx, a.ID)
			if err != nil {
				return err
			}
			conds, err := c.MeasurementRepo.Conditions(ctx, a.ID)
			if err != nil {
				return err
			}
			rows, err := c.MeasurementRepo.MeasurementCount(ctx, a.ID)
			if err != nil {
				return err
			}
			fmt.Printf("%s (id %d)\n", bold(a.Name), a.ID)
			if a.Description != "" {
				fmt.Printf("  %s\n", gray(a.Description))
			}
			fmt.Printf("  Conditions: %s\n", strings.Join(conds, ", "))
			fmt.Printf("  Parameters: %s\n", strings.Join(params, ", "))
			fmt.Printf("  Rows:       %d\n", rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&assay, "assay", "", "Assay id or name")
	return cmd
}

func newProfileCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Validate the --profile file or write the default profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile()
			if err != nil {
				return err
			}
			if output != "" {
				if err := profile.Save(output); err != nil {
					return err
				}
				fmt.Printf("%s profile %q written to %s\n", green("✓"), profile.Name, output)
				return nil
			}
			fmt.Printf("%s profile %q is valid\n", green("✓"), profile.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the profile to this path")
	return cmd
}
