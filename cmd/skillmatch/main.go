// Package main is the skillmatch CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/skillmatch/internal/catalog"
	"github.com/hyperjump/skillmatch/internal/cli"
	"github.com/hyperjump/skillmatch/internal/config"
	"github.com/hyperjump/skillmatch/internal/embedding"
	"github.com/hyperjump/skillmatch/internal/explain"
	"github.com/hyperjump/skillmatch/internal/extract"
	"github.com/hyperjump/skillmatch/internal/match"
	"github.com/hyperjump/skillmatch/internal/models"
	"github.com/hyperjump/skillmatch/internal/normalizer"
	"github.com/hyperjump/skillmatch/internal/ontology"
	"github.com/hyperjump/skillmatch/internal/server"
	"github.com/hyperjump/skillmatch/internal/skillindex"
	"github.com/hyperjump/skillmatch/internal/storage"
	"github.com/hyperjump/skillmatch/internal/suggest"
	"github.com/hyperjump/skillmatch/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/skillmatch/config.yaml"

var httpClient = &http.Client{Timeout: 30 * time.Second}

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command, args := os.Args[1], os.Args[2:]
	switch command {
	case "server":
		exitOnError(runServer(args))
	case "analyze":
		exitOnError(runAnalyze(args, os.Stdin, os.Stdout))
	case "normalize":
		exitOnError(runNormalize(args, os.Stdout))
	case "skills":
		exitOnError(runSkills(args, os.Stdout))
	case "status":
		exitOnError(runStatus(args, os.Stdout))
	case "version", "--version", "-v":
		fmt.Printf("skillmatch version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// exitOnError runs after every deferred cleanup of the command has finished.
func exitOnError(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, match.ErrNoInput) {
		fmt.Fprintln(os.Stderr, match.NoInputMessage)
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}

func runServer(args []string) error {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args)

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.String("ontology", cfg.Ontology.Path),
	)

	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(components.Service, components.Catalog, components.Index, components.Cache, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}

// argsReorder moves any flags (and their values) that appear after the positional
// arguments to the front so that flag.Parse() sees them. Go's flag package stops at
// the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// joinArgs joins positional args with spaces so multi-word input works the same with
// or without shell quoting.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// readJobDescription returns the -jd text, or the text extracted from -jd-file when set.
// "-" reads standard input.
func readJobDescription(text, path string, stdin io.Reader) (string, error) {
	switch path {
	case "":
		return text, nil
	case "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	default:
		return extract.NewExtractor().Extract(path)
	}
}

func runAnalyze(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (local mode)")
	serverURL := fs.String("server", "", "server URL (empty = analyze locally)")
	skills := fs.String("skills", "", "comma-separated list of your skills")
	jd := fs.String("jd", "", "job description text")
	jdFile := fs.String("jd-file", "", "job description file (.txt, .md, .pdf, .docx, .xlsx, .odt, .rtf) or - for stdin")
	strict := fs.Bool("strict", false, "fail when both skills and job description are empty")
	debug := fs.Bool("debug", false, "include intermediate skill sets (local mode)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(args)

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		return err
	}
	text, err := readJobDescription(*jd, *jdFile, stdin)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}
	req := models.AnalyzeRequest{Skills: *skills, JobDescription: text}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	var res *models.AnalyzeResult
	if *serverURL != "" {
		res, err = remoteAnalyze(*serverURL, req, *strict)
	} else {
		components, cleanup, cerr := localComponents(*configPath, func(cfg *config.Config) {
			if *debug {
				cfg.Matching.IncludeDebug = true
			}
		})
		if cerr != nil {
			return cerr
		}
		defer cleanup()
		ctx := context.Background()
		if *strict {
			res, err = components.Service.AnalyzeStrict(ctx, req)
		} else {
			res, err = components.Service.Analyze(ctx, req)
		}
	}
	if errors.Is(err, match.ErrNoInput) {
		return err
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	return cli.WriteAnalysis(stdout, res, format)
}

// remoteAnalyze posts req to a running server. The strict endpoint's empty-input
// rejection comes back as match.ErrNoInput.
func remoteAnalyze(serverURL string, req models.AnalyzeRequest, strict bool) (*models.AnalyzeResult, error) {
	path := "/api/v1/analyze"
	if strict {
		path = "/api/v1/analyze/strict"
	}
	res := &models.AnalyzeResult{}
	err := postJSON(strings.TrimRight(serverURL, "/")+path, req, res)
	var apiErr *apiError
	if strict && errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest && apiErr.Message == match.NoInputMessage {
		return nil, match.ErrNoInput
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func runNormalize(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (local mode)")
	serverURL := fs.String("server", "", "server URL (empty = normalize locally)")
	text := fs.String("text", "", "free text to extract skills from")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(args))

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		return err
	}
	req := models.NormalizeRequest{Skills: match.ParseSkills(strings.Join(fs.Args(), ",")), Text: *text}
	if err := req.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Usage: skillmatch normalize [flags] <skill>[, <skill>...]")
		return fmt.Errorf("invalid input: %w", err)
	}

	var res *match.NormalizeResult
	if *serverURL != "" {
		res = &match.NormalizeResult{}
		err = postJSON(strings.TrimRight(*serverURL, "/")+"/api/v1/normalize", req, res)
	} else {
		components, cleanup, cerr := localComponents(*configPath, nil)
		if cerr != nil {
			return cerr
		}
		defer cleanup()
		res, err = components.Service.Normalize(context.Background(), req.Skills, req.Text)
	}
	if err != nil {
		return fmt.Errorf("normalize failed: %w", err)
	}
	return cli.WriteNormalize(stdout, res, format)
}

func runSkills(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("skills", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (local mode)")
	serverURL := fs.String("server", "", "server URL (empty = search locally)")
	limit := fs.Int("limit", 0, "number of results (0 = configured default)")
	fuzzy := fs.Bool("fuzzy", false, "enable typo tolerance")
	category := fs.String("category", "", "restrict to one category")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(args))

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		return err
	}
	q := models.SkillSearchQuery{Query: joinArgs(fs.Args()), Limit: *limit, Fuzzy: *fuzzy, Category: *category}
	if err := q.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Usage: skillmatch skills [flags] <query>")
		return fmt.Errorf("invalid query: %w", err)
	}

	resp := &models.SkillSearchResponse{}
	if *serverURL != "" {
		params := url.Values{}
		params.Set("q", q.Query)
		if q.Limit > 0 {
			params.Set("limit", strconv.Itoa(q.Limit))
		}
		params.Set("fuzzy", strconv.FormatBool(q.Fuzzy))
		if q.Category != "" {
			params.Set("category", q.Category)
		}
		err = getJSON(strings.TrimRight(*serverURL, "/")+"/api/v1/skills/search?"+params.Encode(), resp)
	} else {
		components, cleanup, cerr := localComponents(*configPath, nil)
		if cerr != nil {
			return cerr
		}
		defer cleanup()
		start := time.Now()
		resp.Query = q.Query
		resp.Hits, err = components.Catalog.Search(context.Background(), q.Query, catalog.SearchOptions{
			Limit:    q.Limit,
			Fuzzy:    q.Fuzzy,
			Category: q.Category,
		})
		resp.QueryTime = time.Since(start).Milliseconds()
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return cli.WriteSkillHits(stdout, resp, format)
}

func runStatus(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (local mode)")
	serverURL := fs.String("server", "", "server URL (empty = load locally)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(args)

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		return err
	}
	var st *models.StatusResponse
	if *serverURL != "" {
		st = &models.StatusResponse{}
		err = getJSON(strings.TrimRight(*serverURL, "/")+"/api/v1/status", st)
	} else {
		var cfg *config.Config
		components, cleanup, cerr := localComponents(*configPath, func(c *config.Config) { cfg = c })
		if cerr != nil {
			return cerr
		}
		defer cleanup()
		st, err = localStatus(context.Background(), components, cfg)
	}
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}
	return cli.WriteStatus(stdout, st, format)
}

// localComponents loads the config, lets mutate adjust it, and builds every component.
// The returned cleanup closes them and must run before the process exits.
func localComponents(configPath string, mutate func(*config.Config)) (*Components, func(), error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if mutate != nil {
		mutate(cfg)
	}
	logger, err := utils.NewCLILogger(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return components, func() {
		components.Close()
		_ = logger.Sync()
	}, nil
}

func localStatus(ctx context.Context, c *Components, cfg *config.Config) (*models.StatusResponse, error) {
	ont := c.Service.Normalizer().Ontology()
	st := &models.StatusResponse{
		Skills:       ont.Len(),
		Surfaces:     c.Index.Size(),
		Categories:   ont.CategoryNames(),
		Families:     len(ont.Families()),
		Model:        c.Index.ModelID(),
		Dimensions:   c.Index.Dimensions(),
		Threshold:    c.Service.Normalizer().Threshold(),
		OntologyPath: cfg.Ontology.Path,
	}
	if c.Cache != nil {
		stats, err := c.Cache.Stats(ctx)
		if err != nil {
			return nil, err
		}
		st.VectorCache = &models.CacheStatus{
			Path:      cfg.Storage.VectorCachePath,
			Entries:   stats.Entries,
			Models:    stats.Models,
			DiskBytes: stats.DiskBytes,
		}
	}
	return st, nil
}

func postJSON(target string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := httpClient.Post(target, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func getJSON(target string, out interface{}) error {
	resp, err := httpClient.Get(target)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

// apiError is a non-200 response from the server.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func decodeResponse(resp *http.Response, out interface{}) error {
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(b, &body) == nil && body.Error != "" {
			return &apiError{Status: resp.StatusCode, Message: body.Error}
		}
		return &apiError{Status: resp.StatusCode, Message: strings.TrimSpace(string(b))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Components holds initialized services.
type Components struct {
	Embedder embedding.Embedder
	Cache    storage.VectorCache
	Index    *skillindex.Index
	Catalog  *catalog.Catalog
	Service  *match.Service
}

func (c *Components) Close() {
	if c.Catalog != nil {
		_ = c.Catalog.Close()
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

// newEmbedder returns the configured embedder. An ONNX model that cannot be loaded
// falls back to the hashing embedder.
func newEmbedder(cfg *config.Config, logger *zap.Logger) embedding.Embedder {
	hashing := embedding.NewHashingEmbedder(cfg.Embedding.Dimensions, cfg.Embedding.GramSize)
	if cfg.Embedding.Backend != "onnx" {
		return hashing
	}
	onnx, err := embedding.NewONNXEmbedder(embedding.ONNXConfig{
		ModelPath:     cfg.Embedding.ModelPath,
		TokenizerPath: cfg.Embedding.TokenizerPath,
		LibraryPath:   cfg.Embedding.LibraryPath,
		Dimensions:    cfg.Embedding.Dimensions,
		MaxTokens:     cfg.Embedding.MaxTokens,
	})
	if err != nil {
		logger.Warn("onnx embedder unavailable, falling back to hashing",
			zap.String("model_path", cfg.Embedding.ModelPath),
			zap.Error(err))
		return hashing
	}
	return onnx
}

func matchOptions(cfg *config.Config) match.Options {
	opts := match.DefaultOptions()
	opts.Missing = suggest.Caps{PerCategory: cfg.Matching.MissingPerCategory, Total: cfg.Matching.MissingTotal}
	opts.NiceToHave = suggest.Caps{PerCategory: cfg.Matching.NicePerCategory, Total: cfg.Matching.NiceTotal}
	opts.IncludeDebug = cfg.Matching.IncludeDebug
	opts.ExplainTimeout = cfg.Explain.Timeout
	opts.MaxReasons = cfg.Explain.MaxReasons
	return opts
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	ont, err := ontology.LoadFile(cfg.Ontology.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load ontology: %w", err)
	}
	c := &Components{Embedder: newEmbedder(cfg, logger)}

	buildOpts := []skillindex.Option{
		skillindex.WithLogger(logger),
		skillindex.WithWorkers(cfg.Embedding.Workers),
	}
	if cfg.Storage.VectorCachePath != "" {
		cache, err := storage.NewSQLiteVectorCache(cfg.Storage.VectorCachePath)
		if err != nil {
			logger.Warn("vector cache disabled", zap.String("path", cfg.Storage.VectorCachePath), zap.Error(err))
		} else {
			c.Cache = cache
			buildOpts = append(buildOpts, skillindex.WithCache(cache))
		}
	}

	c.Index, err = skillindex.Build(ctx, ont, c.Embedder, buildOpts...)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to build skill index: %w", err)
	}
	norm, err := normalizer.New(c.Index, ont, cfg.Matching.ThresholdOrDefault(), normalizer.WithMaxNGram(cfg.Matching.MaxNGram))
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Catalog, err = catalog.New(ont, catalog.Options{
		DefaultLimit: cfg.Catalog.DefaultLimit,
		MaxLimit:     cfg.Catalog.MaxLimit,
		Fuzziness:    cfg.Catalog.Fuzziness,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to build skill catalog: %w", err)
	}

	var explainer explain.Explainer
	if cfg.Explain.EnabledOrDefault() {
		explainer = explain.NewRuleExplainer()
	}
	c.Service = match.NewService(norm, explainer, c.Catalog, matchOptions(cfg), logger)
	return c, nil
}

func printUsage() {
	fmt.Println(`skillmatch - Skill normalization and job matching

Usage:
  skillmatch server [flags]                 Start the HTTP server
  skillmatch analyze [flags]                Score your skills against a job description
  skillmatch normalize [flags] <skills>     Map skill phrases to canonical names
  skillmatch skills [flags] <query>         Search the skills ontology
  skillmatch status [flags]                 Show ontology and index status
  skillmatch version                        Show version
  skillmatch help                           Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/skillmatch/config.yaml)
  --debug            Enable debug logging

Analyze Flags:
  --skills string    Comma-separated list of your skills
  --jd string        Job description text
  --jd-file string   Job description file, or - for stdin
  --strict           Fail when both inputs are empty
  --debug            Include intermediate skill sets (local mode)

Normalize Flags:
  --text string      Free text to extract skills from

Skills Flags:
  --limit int        Number of results (default from config)
  --fuzzy            Enable typo tolerance
  --category string  Restrict to one category

Common Flags:
  --config string    Config file path (local mode)
  --server string    Server URL, e.g. http://localhost:8080. Empty runs locally.
  --output string    Output format: text or json (default: text)

Examples:
  skillmatch server
  skillmatch analyze --skills "React, Node" --jd "We use React and Express"
  skillmatch analyze --skills "Go" --jd-file job.pdf --output json
  skillmatch normalize reactjs "node js" --text "MERN stack"
  skillmatch skills --fuzzy postgress
  skillmatch status --server http://localhost:8080`)
}
