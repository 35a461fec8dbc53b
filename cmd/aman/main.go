package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"

	"github.com/aman-security/aman/pkg/analytics"
	"github.com/aman-security/aman/pkg/analyzer"
	"github.com/aman-security/aman/pkg/config"
	"github.com/aman-security/aman/pkg/httputil"
	"github.com/aman-security/aman/pkg/links"
	"github.com/aman-security/aman/pkg/ml"
)

const Version = "3.0.0"

// Service holds the analysis components.
// The classifier and judge are optional and gracefully degrade if unavailable.
type Service struct {
	analyzer *analyzer.Analyzer
	scanner  *links.Scanner
	clf      *ml.Classifier
	learner  *ml.Learner
	stats    *analytics.Store
	config   *config.Config
}

func NewService(cfg *config.Config) *Service {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	tables := links.DefaultTables()
	if cfg.TablesDir != "" {
		tables = links.LoadTables(cfg.TablesDir)
		log.Printf("✓ Risk tables loaded from %s", cfg.TablesDir)
	}

	sem := httputil.NewSemaphore(cfg.FetchConcurrency)
	content := links.NewContentAnalyzer(cfg.FetchTimeout, sem)
	scanner := links.NewScanner(tables, content)

	// Try to load a previously trained model - optional
	clf := ml.NewClassifier(cfg.ModelPath(), cfg.VectorizerPath())
	if err := clf.Load(); err == nil {
		trainedAt, examples := clf.State()
		log.Printf("✓ Classifier loaded (%d examples, trained %s)",
			examples, trainedAt.Format(time.RFC3339))
	} else {
		log.Println("○ Classifier untrained (no model on disk)")
	}

	// Initialize the judgment client if API key available - optional
	judge := ml.NewJudge(cfg.JudgeAPIKey, cfg.JudgeModel, cfg.JudgeBaseURL)
	if judge != nil {
		log.Printf("✓ Judgment enabled (model: %s)", cfg.JudgeModel)
	} else {
		log.Println("○ Judgment disabled (no API key)")
	}

	store := ml.NewCorpusStore(cfg.PendingPath(), cfg.CorpusPath())
	learner := ml.NewLearner(store, clf, cfg.RetrainThreshold, cfg.RetrainCooldown)
	stats := analytics.NewStore()

	return &Service{
		analyzer: analyzer.New(scanner, clf, judge, learner, stats),
		scanner:  scanner,
		clf:      clf,
		learner:  learner,
		stats:    stats,
		config:   cfg,
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		port := "8000"
		if len(os.Args) > 2 {
			port = os.Args[2]
		}
		runHTTPServer(port)
	case "analyze":
		if len(os.Args) < 3 {
			fmt.Println("Usage: aman analyze <text>")
			os.Exit(1)
		}
		runCLIAnalyze(strings.Join(os.Args[2:], " "))
	case "scan-link":
		if len(os.Args) < 3 {
			fmt.Println("Usage: aman scan-link <url>")
			os.Exit(1)
		}
		runCLIScanLink(os.Args[2])
	case "scan-links":
		if len(os.Args) < 3 {
			fmt.Println("Usage: aman scan-links <text>")
			os.Exit(1)
		}
		runCLIScanFast(strings.Join(os.Args[2:], " "))
	case "retrain":
		runCLIRetrain()
	case "version":
		fmt.Printf("Aman v%s\n", Version)
		fmt.Println("Message Fraud Analyzer")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Aman v%s - Message Fraud Analyzer\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  aman serve [port]       Start HTTP server (default: 8000)")
	fmt.Println("  aman analyze <text>     Analyze a message for fraud")
	fmt.Println("  aman scan-link <url>    Deep-scan one URL (live fetch)")
	fmt.Println("  aman scan-links <text>  Syntax-only scan of URLs in text (no network)")
	fmt.Println("  aman retrain            Merge pending examples and retrain the model")
	fmt.Println("  aman version            Show version")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  GROQ_API_KEY             API key for the judgment service")
	fmt.Println("  AMAN_DATA_DIR            Training corpora directory (default: data)")
	fmt.Println("  AMAN_MODEL_DIR           Model artifact directory (default: models)")
	fmt.Println("  AMAN_RETRAIN_THRESHOLD   Pending examples before auto-retrain (default: 20)")
}

// ============================================================================
// HTTP Server Mode
// ============================================================================

func runHTTPServer(port string) {
	svc := NewService(config.NewDefaultConfig())

	app := fiber.New(fiber.Config{
		AppName: "Aman",
	})
	app.Use(cors.New())

	app.Get("/", func(c fiber.Ctx) error {
		c.Set("Content-Type", "text/html; charset=utf-8")
		return c.SendString(htmlPage)
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "version": Version})
	})

	app.Post("/analyze", func(c fiber.Ctx) error {
		var req struct {
			Text string `json:"text"`
		}
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		if req.Text == "" {
			return c.Status(400).JSON(fiber.Map{"error": "text field is required"})
		}
		return c.JSON(svc.analyzer.Analyze(c.Context(), req.Text))
	})

	scanLink := func(c fiber.Ctx) error {
		var req struct {
			URL string `json:"url"`
		}
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		if req.URL == "" {
			return c.Status(400).JSON(fiber.Map{"error": "url field is required"})
		}
		return c.JSON(svc.scanner.AnalyzeLink(c.Context(), req.URL))
	}
	app.Post("/scan-link", scanLink)
	app.Post("/scan-link-deep", scanLink)

	app.Get("/stats", func(c fiber.Ctx) error {
		return c.JSON(svc.stats.Snapshot())
	})

	app.Get("/learning/status", func(c fiber.Ctx) error {
		return c.JSON(svc.learner.Status())
	})

	app.Get("/model/status", func(c fiber.Ctx) error {
		message := "غير مدرب"
		if svc.clf.IsTrained() {
			message = "جاهز"
		}
		return c.JSON(fiber.Map{
			"is_trained": svc.clf.IsTrained(),
			"message":    message,
		})
	})

	app.Post("/train", func(c fiber.Ctx) error {
		report, err := svc.learner.Retrain()
		if err != nil {
			return c.JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.JSON(fiber.Map{
			"success":  true,
			"accuracy": report.Accuracy,
			"message":  "تم التدريب بنجاح",
		})
	})

	app.Post("/retrain", func(c fiber.Ctx) error {
		if _, err := svc.learner.Retrain(); err != nil {
			log.Printf("Manual retrain failed: %v", err)
			return c.JSON(fiber.Map{"success": false, "message": "فشل إعادة التدريب"})
		}
		return c.JSON(fiber.Map{"success": true, "message": "تم إعادة التدريب"})
	})

	log.Printf("Aman HTTP server starting on :%s", port)
	log.Printf("Endpoints:")
	log.Printf("  GET  /                - Web UI")
	log.Printf("  POST /analyze         - Full message analysis")
	log.Printf("  POST /scan-link       - Deep single-URL scan")
	log.Printf("  GET  /stats           - Analytics snapshot")
	log.Printf("  GET  /learning/status - Continuous learning state")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}

// ============================================================================
// CLI Modes
// ============================================================================

func runCLIAnalyze(text string) {
	svc := NewService(config.NewDefaultConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	printJSON(svc.analyzer.Analyze(ctx, text))
}

func runCLIScanLink(url string) {
	svc := NewService(config.NewDefaultConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	printJSON(svc.scanner.AnalyzeLink(ctx, url))
}

func runCLIScanFast(text string) {
	svc := NewService(config.NewDefaultConfig())
	printJSON(svc.scanner.ScanFast(text))
}

func runCLIRetrain() {
	svc := NewService(config.NewDefaultConfig())
	report, err := svc.learner.Retrain()
	if err != nil {
		log.Fatalf("Retrain failed: %v", err)
	}
	fmt.Printf("Retrained on %d examples (accuracy: %.1f%%)\n",
		report.TrainSize+report.TestSize, report.Accuracy*100)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
}
