// CarpetNest — EVA car mat nesting with drag-knife program export
//
// A command line tool for car mat workshops: it imports an order sheet
// (CSV or Excel) and the mat outline DXF files, nests the mats onto
// EVA sheet stock, and writes the cut layout PDF, QR mat labels and
// one CNC drag-knife program per consumed sheet.
//
// Build:
//   go build -o carpetnest ./cmd/carpetnest
//
// Usage:
//   carpetnest nest -orders week34.xlsx -dxf ./outlines -sheet "EVA 140x200 black=6" -out ./job
//   carpetnest nest -template "Lada Vesta SW" -order ORD-207 -out ./job
//   carpetnest template -save "Lada Vesta SW" -from ./job/project.json
//   carpetnest inventory
//   carpetnest compare -orders week34.xlsx -dxf ./outlines -sheet "EVA 140x200 black=6"

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/piwi3910/CarpetNest/internal/export"
	"github.com/piwi3910/CarpetNest/internal/gcode"
	"github.com/piwi3910/CarpetNest/internal/importer"
	"github.com/piwi3910/CarpetNest/internal/model"
	"github.com/piwi3910/CarpetNest/internal/nest"
	"github.com/piwi3910/CarpetNest/internal/project"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("carpetnest: ")

	// Post-processor profiles saved from earlier sessions extend the
	// built-in list for every subcommand.
	if custom, err := project.LoadCustomProfilesFromDefault(); err == nil {
		model.CustomProfiles = custom
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "nest":
		err = cmdNest(os.Args[2:])
	case "inventory":
		err = cmdInventory(os.Args[2:])
	case "template":
		err = cmdTemplate(os.Args[2:])
	case "compare":
		err = cmdCompare(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		log.Printf("unknown command %q", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: carpetnest <command> [flags]

Commands:
  nest       nest an order batch onto sheet stock, write layout, labels and programs
  inventory  list or edit the saved sheet presets and knife profiles
  template   list, save or delete reusable car model templates
  compare    nest the same batch under what-if setting variants

Run "carpetnest <command> -h" for the flags of each command.`)
}

// sheetSpec names a saved sheet preset and how many of it are on hand.
type sheetSpec struct {
	Name  string
	Count int
}

// sheetList collects repeated -sheet flags.
type sheetList []sheetSpec

func (s *sheetList) String() string {
	var parts []string
	for _, spec := range *s {
		parts = append(parts, fmt.Sprintf("%s=%d", spec.Name, spec.Count))
	}
	return strings.Join(parts, ",")
}

func (s *sheetList) Set(v string) error {
	name, countStr, ok := strings.Cut(v, "=")
	if !ok {
		return fmt.Errorf(`want "preset name=count", got %q`, v)
	}
	count, err := strconv.Atoi(strings.TrimSpace(countStr))
	if err != nil || count <= 0 {
		return fmt.Errorf("bad sheet count in %q", v)
	}
	*s = append(*s, sheetSpec{Name: strings.TrimSpace(name), Count: count})
	return nil
}

func cmdNest(args []string) error {
	fs := flag.NewFlagSet("nest", flag.ExitOnError)
	var stock sheetList
	ordersPath := fs.String("orders", "", "order sheet to cut (.csv, .xlsx)")
	tplName := fs.String("template", "", "nest a saved car model template instead of an orders file")
	orderID := fs.String("order", "", "order ID stamped on template mats (default: template name)")
	dxfDir := fs.String("dxf", ".", "directory holding the mat outline DXF files")
	outDir := fs.String("out", ".", "directory for generated files")
	name := fs.String("name", "", "project name (default: orders file or template name)")
	gap := fs.Float64("gap", 0, "minimum gap between mats in mm (0 = saved default)")
	ordering := fs.String("ordering", "", "placement order: as-given, area-desc or genetic")
	span := fs.Int("span", -1, "sheets one order may span, 0 = unlimited (-1 = saved default)")
	knife := fs.String("knife", "", "knife profile name from the saved inventory")
	post := fs.String("post", "", "post-processor profile (Grbl, Mach3, LinuxCNC, Generic)")
	noPDF := fs.Bool("no-pdf", false, "skip the layout PDF")
	noLabels := fs.Bool("no-labels", false, "skip the label sheet PDF")
	noGcode := fs.Bool("no-gcode", false, "skip the cutting programs")
	verbose := fs.Bool("v", false, "report nesting progress")
	fs.Var(&stock, "sheet", `sheet stock to draw from, as "preset name=count" (repeatable)`)
	fs.Parse(args)

	switch {
	case *ordersPath == "" && *tplName == "":
		return errors.New("nest: -orders or -template is required")
	case *ordersPath != "" && *tplName != "":
		return errors.New("nest: -orders and -template are mutually exclusive")
	case *tplName == "" && len(stock) == 0:
		return errors.New(`nest: at least one -sheet "preset name=count" is required`)
	}

	cfg := loadConfig()
	inv, _, err := project.LoadOrCreateInventory()
	if err != nil {
		return fmt.Errorf("inventory: %w", err)
	}

	// A template carries the settings, carpets and stock that worked for
	// its car model; an orders run starts from the saved config instead.
	base := configBase(cfg)
	projName := *name
	var carpets []model.Carpet
	var sheets []model.SheetType

	if *tplName != "" {
		store, err := project.LoadDefaultTemplates()
		if err != nil {
			return fmt.Errorf("templates: %w", err)
		}
		tpl := store.FindByName(*tplName)
		if tpl == nil {
			return fmt.Errorf("unknown template %q, saved templates: %s",
				*tplName, strings.Join(store.Names(), ", "))
		}
		if projName == "" {
			projName = tpl.Name
		}
		id := *orderID
		if id == "" {
			id = tpl.Name
		}
		tplProj := tpl.ToProject(projName, id)
		carpets = tplProj.Carpets
		sheets = tplProj.Inventory
		base = tpl.Settings
	} else {
		if projName == "" {
			projName = strings.TrimSuffix(filepath.Base(*ordersPath), filepath.Ext(*ordersPath))
		}
		carpets, err = loadCarpets(*ordersPath, *dxfDir)
		if err != nil {
			return err
		}
	}

	settings, err := buildSettings(base, inv, *knife, *post, *ordering, *gap, *span)
	if err != nil {
		return err
	}
	if len(stock) > 0 {
		sheets, err = resolveStock(inv, stock)
		if err != nil {
			return err
		}
	}
	if len(sheets) == 0 {
		return fmt.Errorf("template %q has no inventory; give -sheet flags", *tplName)
	}

	nester := nest.New(settings)
	if *verbose {
		nester.Progress = func(percent float64, status string) {
			log.Printf("%3.0f%% %s", percent, status)
		}
	}
	result := nester.Nest(carpets, sheets)

	printNestSummary(os.Stdout, result)
	for _, w := range gcode.FormatCrossingWarnings(gcode.CheckRapidCrossings(result, settings)) {
		log.Print(w)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return err
	}

	proj := model.NewProject()
	proj.Name = projName
	proj.Carpets = carpets
	proj.Inventory = sheets
	proj.Settings = settings
	proj.Result = &result
	layoutPath := filepath.Join(*outDir, "project.json")
	if err := project.Save(layoutPath, proj); err != nil {
		return fmt.Errorf("project: %w", err)
	}
	fmt.Println("wrote", layoutPath)

	if !*noPDF {
		path := filepath.Join(*outDir, "layout.pdf")
		if err := export.ExportPDF(path, result, settings, presetPrices(inv)); err != nil {
			return fmt.Errorf("layout: %w", err)
		}
		fmt.Println("wrote", path)
	}
	if !*noLabels && result.PlacedCount() > 0 {
		path := filepath.Join(*outDir, "labels.pdf")
		if err := export.ExportLabels(path, result); err != nil {
			return fmt.Errorf("labels: %w", err)
		}
		fmt.Println("wrote", path)
	}
	if !*noGcode {
		gen := gcode.New(settings)
		for _, sheet := range result.Sheets {
			program := gen.GenerateSheet(sheet)
			path := filepath.Join(*outDir, fmt.Sprintf("sheet%d.gcode", sheet.SheetNumber))
			if err := os.WriteFile(path, []byte(program), 0644); err != nil {
				return fmt.Errorf("program: %w", err)
			}
			stats := gcode.ProgramStatistics(gcode.ParseProgram(program), settings)
			fmt.Printf("wrote %s (cut %.1f m, about %.0f min)\n", path, stats.CutLength/1000, stats.EstimatedMins)
		}
	}

	if *ordersPath != "" {
		cfg.RecentOrders = pushRecent(cfg.RecentOrders, *ordersPath)
		if err := project.SaveAppConfig(project.DefaultConfigPath(), cfg); err != nil {
			log.Printf("config: %v", err)
		}
	}
	return nil
}

func cmdInventory(args []string) error {
	fs := flag.NewFlagSet("inventory", flag.ExitOnError)
	addSheet := fs.String("add-sheet", "", `new sheet preset as "name:WxH:color:price" (cm)`)
	importPath := fs.String("import", "", "merge sheet presets and knives from an exported JSON file")
	exportPath := fs.String("export", "", "write the full inventory to a JSON file")
	fs.Parse(args)

	inv, path, err := project.LoadOrCreateInventory()
	if err != nil {
		return fmt.Errorf("inventory: %w", err)
	}

	changed := false
	if *addSheet != "" {
		preset, err := parseSheetPreset(*addSheet)
		if err != nil {
			return err
		}
		inv.Sheets = append(inv.Sheets, preset)
		changed = true
		fmt.Printf("added %s (%g x %g cm, %s)\n", preset.Name, preset.Width, preset.Height, preset.Color)
	}
	if *importPath != "" {
		before := len(inv.Knives) + len(inv.Sheets)
		inv, err = project.ImportInventory(*importPath, inv)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		changed = true
		fmt.Printf("imported %d new entries\n", len(inv.Knives)+len(inv.Sheets)-before)
	}
	if changed {
		if err := project.SaveInventory(path, inv); err != nil {
			return fmt.Errorf("inventory: %w", err)
		}
	}
	if *exportPath != "" {
		if err := project.ExportInventory(*exportPath, inv); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Println("wrote", *exportPath)
	}
	if !changed && *exportPath == "" {
		printInventory(os.Stdout, inv)
	}
	return nil
}

func cmdTemplate(args []string) error {
	fs := flag.NewFlagSet("template", flag.ExitOnError)
	save := fs.String("save", "", "save a template with this name from the project given by -from")
	from := fs.String("from", "", "project.json written by a previous nest run")
	desc := fs.String("desc", "", "template description")
	del := fs.String("delete", "", "delete the template with this name")
	fs.Parse(args)

	store, err := project.LoadDefaultTemplates()
	if err != nil {
		return fmt.Errorf("templates: %w", err)
	}

	switch {
	case *save != "":
		if *from == "" {
			return errors.New("template: -save needs -from project.json")
		}
		proj, err := project.Load(*from)
		if err != nil {
			return fmt.Errorf("project: %w", err)
		}
		if len(proj.Carpets) == 0 {
			return fmt.Errorf("project %s has no mats to template", *from)
		}
		store.Upsert(model.NewNestTemplate(*save, *desc, proj.Carpets, proj.Inventory, proj.Settings))
		if err := project.SaveDefaultTemplates(store); err != nil {
			return fmt.Errorf("templates: %w", err)
		}
		fmt.Printf("saved template %q (%d mats)\n", *save, len(proj.Carpets))
	case *del != "":
		tpl := store.FindByName(*del)
		if tpl == nil {
			return fmt.Errorf("unknown template %q", *del)
		}
		store.Remove(tpl.ID)
		if err := project.SaveDefaultTemplates(store); err != nil {
			return fmt.Errorf("templates: %w", err)
		}
		fmt.Printf("deleted template %q\n", *del)
	default:
		if len(store.Templates) == 0 {
			fmt.Println("no saved templates")
			return nil
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tMATS\tSHEET TYPES\tUPDATED\tDESCRIPTION")
		for _, tpl := range store.Templates {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n",
				tpl.Name, len(tpl.Carpets), len(tpl.Inventory), tpl.UpdatedAt, tpl.Description)
		}
		return tw.Flush()
	}
	return nil
}

func cmdCompare(args []string) error {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	var stock sheetList
	ordersPath := fs.String("orders", "", "order sheet to cut (.csv, .xlsx)")
	dxfDir := fs.String("dxf", ".", "directory holding the mat outline DXF files")
	knife := fs.String("knife", "", "knife profile name from the saved inventory")
	fs.Var(&stock, "sheet", `sheet stock to draw from, as "preset name=count" (repeatable)`)
	fs.Parse(args)

	if *ordersPath == "" {
		return errors.New("compare: -orders is required")
	}
	if len(stock) == 0 {
		return errors.New(`compare: at least one -sheet "preset name=count" is required`)
	}

	cfg := loadConfig()
	inv, _, err := project.LoadOrCreateInventory()
	if err != nil {
		return fmt.Errorf("inventory: %w", err)
	}

	settings, err := buildSettings(configBase(cfg), inv, *knife, "", "", 0, -1)
	if err != nil {
		return err
	}
	sheets, err := resolveStock(inv, stock)
	if err != nil {
		return err
	}
	carpets, err := loadCarpets(*ordersPath, *dxfDir)
	if err != nil {
		return err
	}

	results := nest.CompareScenarios(nest.BuildDefaultScenarios(settings), carpets, sheets)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tSHEETS\tPLACED\tUNPLACED\tWASTE")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.1f%%\n",
			r.Scenario.Name, r.SheetsUsed, r.PlacedCount, r.UnplacedCount, r.WastePercent)
	}
	return tw.Flush()
}

// loadConfig reads the saved defaults, falling back to stock values when
// the config file is unreadable.
func loadConfig() model.AppConfig {
	cfg, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err != nil {
		log.Printf("config: %v (using defaults)", err)
		return model.DefaultAppConfig()
	}
	return cfg
}

// configBase applies the saved workshop defaults to the stock settings.
func configBase(cfg model.AppConfig) model.NestSettings {
	settings := model.DefaultSettings()
	cfg.ApplyToSettings(&settings)
	return settings
}

// buildSettings layers the chosen knife profile and the command line
// overrides onto the base settings, in that order.
func buildSettings(base model.NestSettings, inv model.Inventory, knife, post, ordering string, gap float64, span int) (model.NestSettings, error) {
	settings := base

	if knife != "" {
		kp := inv.FindKnifeByName(knife)
		if kp == nil {
			return settings, fmt.Errorf("unknown knife %q, saved knives: %s",
				knife, strings.Join(inv.KnifeNames(), ", "))
		}
		kp.ApplyToSettings(&settings)
	}
	if post != "" {
		names := model.GetProfileNames()
		found := false
		for _, n := range names {
			if n == post {
				found = true
				break
			}
		}
		if !found {
			return settings, fmt.Errorf("unknown cutter profile %q, available: %s",
				post, strings.Join(names, ", "))
		}
		settings.CutterProfile = post
	}
	if ordering != "" {
		switch model.OrderingStrategy(ordering) {
		case model.OrderingAsGiven, model.OrderingAreaDesc, model.OrderingGenetic:
			settings.Ordering = model.OrderingStrategy(ordering)
		default:
			return settings, fmt.Errorf("unknown ordering %q, want as-given, area-desc or genetic", ordering)
		}
	}
	if gap > 0 {
		settings.MinGap = gap
	}
	if span >= 0 {
		settings.MaxSheetsPerOrder = span
	}
	return settings, nil
}

// resolveStock converts -sheet flags into allocatable sheet types by
// looking each preset up in the saved inventory.
func resolveStock(inv model.Inventory, specs sheetList) ([]model.SheetType, error) {
	var sheets []model.SheetType
	for _, spec := range specs {
		preset := inv.FindSheetByName(spec.Name)
		if preset == nil {
			return nil, fmt.Errorf("unknown sheet preset %q, saved presets: %s",
				spec.Name, strings.Join(inv.SheetNames(), ", "))
		}
		sheets = append(sheets, preset.ToSheetType(spec.Count))
	}
	return sheets, nil
}

// loadCarpets imports the order sheet and resolves each row against the
// DXF directory. Row-level problems are reported and skipped; only an
// empty result is fatal.
func loadCarpets(ordersPath, dxfDir string) ([]model.Carpet, error) {
	imported := importer.ImportOrders(ordersPath)
	for _, w := range imported.Warnings {
		log.Printf("orders: %s", w)
	}
	for _, e := range imported.Errors {
		log.Printf("orders: %s", e)
	}
	if len(imported.Rows) == 0 {
		return nil, fmt.Errorf("no usable order rows in %s", ordersPath)
	}

	built := importer.BuildCarpets(imported.Rows, dxfDir)
	for _, w := range built.Warnings {
		log.Printf("dxf: %s", w)
	}
	for _, e := range built.Errors {
		log.Printf("dxf: %s", e)
	}
	if len(built.Carpets) == 0 {
		return nil, fmt.Errorf("no mat outlines could be loaded from %s", dxfDir)
	}
	return built.Carpets, nil
}

func printNestSummary(w io.Writer, result model.NestResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SHEET\tTYPE\tCOLOR\tMATS\tUSED")
	for _, s := range result.Sheets {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.1f%%\n",
			s.SheetNumber, s.TypeName, s.Color, len(s.Placed), s.UsagePercent())
	}
	tw.Flush()
	fmt.Fprintf(w, "%d sheets, %d mats placed, overall usage %.1f%%\n",
		len(result.Sheets), result.PlacedCount(), result.TotalUsage())
	if len(result.Unplaced) > 0 {
		fmt.Fprintf(w, "%d mats did not fit:\n", len(result.Unplaced))
		for _, c := range result.Unplaced {
			fmt.Fprintf(w, "  %s / %s (%s)\n", c.OrderID, c.Filename, c.Color)
		}
	}
}

func printInventory(w io.Writer, inv model.Inventory) {
	fmt.Fprintln(w, "Knives:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tOFFSET\tFEED\tPLUNGE\tDEPTH/PASS")
	for _, k := range inv.Knives {
		fmt.Fprintf(tw, "  %s\t%.2f mm\t%.0f\t%.0f\t%.1f/%.1f mm\n",
			k.Name, k.KnifeOffset, k.FeedRate, k.PlungeRate, k.CutDepth, k.PassDepth)
	}
	tw.Flush()

	fmt.Fprintln(w, "Sheets:")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tSIZE\tCOLOR\tPRICE")
	for _, s := range inv.Sheets {
		fmt.Fprintf(tw, "  %s\t%g x %g cm\t%s\t%.0f\n", s.Name, s.Width, s.Height, s.Color, s.Price)
	}
	tw.Flush()
}

// parseSheetPreset parses "name:WxH:color:price" with dimensions in cm.
func parseSheetPreset(v string) (model.SheetPreset, error) {
	parts := strings.Split(v, ":")
	if len(parts) != 4 {
		return model.SheetPreset{}, fmt.Errorf(`bad sheet preset %q, want "name:WxH:color:price"`, v)
	}
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return model.SheetPreset{}, errors.New("sheet preset needs a name")
	}
	wStr, hStr, ok := strings.Cut(strings.ToLower(parts[1]), "x")
	if !ok {
		return model.SheetPreset{}, fmt.Errorf("bad dimensions %q, want WxH in cm", parts[1])
	}
	w, errW := strconv.ParseFloat(strings.TrimSpace(wStr), 64)
	h, errH := strconv.ParseFloat(strings.TrimSpace(hStr), 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return model.SheetPreset{}, fmt.Errorf("bad dimensions %q, want WxH in cm", parts[1])
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil || price < 0 {
		return model.SheetPreset{}, fmt.Errorf("bad price %q", parts[3])
	}
	color, known := importer.NormalizeColor(parts[2])
	if !known {
		log.Printf("color %q not recognized, using %s", parts[2], color)
	}
	return model.NewSheetPreset(name, w, h, color, price), nil
}

// presetPrices maps sheet type names to per-sheet prices for PDF costing.
func presetPrices(inv model.Inventory) map[string]float64 {
	prices := map[string]float64{}
	for _, p := range inv.Sheets {
		if p.Price > 0 {
			prices[p.Name] = p.Price
		}
	}
	return prices
}

// pushRecent puts path at the head of the recent-orders list, dropping
// duplicates and keeping the newest ten.
func pushRecent(recent []string, path string) []string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	out := []string{path}
	for _, p := range recent {
		if p != path && len(out) < 10 {
			out = append(out, p)
		}
	}
	return out
}
