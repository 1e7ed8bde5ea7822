// cmd/vocab-import loads a vocabulary spreadsheet into one user's account
// and runs the same achievement checks as an upload through the API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"hangeul/config"
	"hangeul/di"
	"hangeul/logger"
	"hangeul/metrics"
	"hangeul/models"
	"hangeul/services"

	"github.com/spf13/pflag"
	"gorm.io/gorm"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "path to a YAML config file (optional)")
		username   = pflag.StringP("user", "u", "", "account that receives the words")
		sheet      = pflag.String("sheet", "", "sheet name (default: first sheet)")
		startRow   = pflag.Int("start-row", 2, "first data row, 1-based")
		wordCol    = pflag.Int("word-col", 0, "zero-based column of the Korean word")
		meaningCol = pflag.Int("meaning-col", 1, "zero-based column of the meaning")
		geoCol     = pflag.Int("meaning-geo-col", 2, "zero-based column of the Georgian meaning")
	)
	pflag.Parse()

	if *username == "" || pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: vocab-import --user NAME [flags] FILE.xlsx|FILE.csv")
		pflag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(*configPath, *username, pflag.Arg(0), services.ImportConfig{
		SheetName:        *sheet,
		StartRow:         *startRow,
		WordColumn:       *wordCol,
		MeaningColumn:    *meaningCol,
		MeaningGeoColumn: *geoCol,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, username, file string, layout services.ImportConfig) error {
	conf, err := config.Load(config.Path(configPath))
	if err != nil {
		return err
	}
	log := logger.New(conf)
	rec := metrics.Noop{}

	db, cleanup, err := di.ProvideDB(conf, log)
	if err != nil {
		return err
	}
	defer cleanup()

	clock, err := di.ProvideClock(conf)
	if err != nil {
		return err
	}

	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no user named %q", username)
		}
		return err
	}

	rules := services.RulesFromConfig(conf)
	streaks := services.NewStreakTracker(db, clock, rules, rec, log)
	content := services.NewContentService(db, clock)
	engine := services.NewEngine(
		clock,
		services.NewActivityLedger(db, clock, rules, streaks, rec, log),
		streaks,
		services.NewChallengeEvaluator(db, clock, rules, rec, log),
		services.NewQuizTracker(db, clock, rules, rec, log),
		di.ProvideAchievementEngine(db, clock, conf, services.NewSeedCache(conf, log), rec, log),
		content,
		services.NewHub(log),
		log,
	)
	importer := services.NewVocabularyImporter(content, log).WithConfig(layout)

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx := context.Background()
	result, err := importer.Import(ctx, user.ID, file, f)
	if err != nil {
		return err
	}

	var unlocks []services.Unlock
	if result.Created > 0 {
		unlocks = engine.OnContentCreated(ctx, user.ID, models.DomainVocabulary)
	}

	fmt.Printf("processed %d rows: %d created, %d skipped\n", result.TotalProcessed, result.Created, result.Skipped)
	for _, e := range result.Errors {
		fmt.Printf("  %s\n", e)
	}
	for _, u := range unlocks {
		fmt.Printf("unlocked: %s\n", u.Title)
	}
	return nil
}
