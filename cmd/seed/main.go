// Command seed loads portfolio content from a JSON or YAML file into the
// configured store. The file is an object keyed by API path segment:
//
//	profile:
//	  - name: Alex Doe
//	    subtitle: Graphic designer
//	    bio: I design books and posters.
//	projects:
//	  - title: Library wayfinding
//	    slug: library-wayfinding
//
// Every record goes through the same validation as POST /api/<path>.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/portfolio-cms/content-api/internal/config"
	"github.com/portfolio-cms/content-api/internal/content"
	"github.com/portfolio-cms/content-api/internal/content/service"
	"github.com/portfolio-cms/content-api/internal/schema"
	"github.com/portfolio-cms/content-api/internal/store"
	"github.com/portfolio-cms/content-api/pkg/logger"
	"gopkg.in/yaml.v3"
)

func main() {
	file := flag.String("file", "content.yaml", "seed file (JSON or YAML)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.SetOutput(os.Stderr, !cfg.Server.Production())
	logger.Init(cfg.Log.Level)

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Fatalf("read seed file: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.URL == "" {
		logger.Fatalf("DATABASE_URL is required for seeding")
	}
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer st.Close(context.Background())

	svc := service.NewService(st)
	if err := svc.EnsureIndexes(ctx); err != nil {
		logger.Warnf("ensure indexes: %v", err)
	}

	inserted, failed, err := seed(ctx, svc, data)
	if err != nil {
		logger.Fatalf("seed: %v", err)
	}
	logger.Infof("seed finished: inserted=%d failed=%d", inserted, failed)
	if failed > 0 {
		st.Close(context.Background())
		os.Exit(1)
	}
}

// seed inserts every record of data. A record that fails validation or
// insertion is logged and counted; err is only set when data cannot be parsed.
func seed(ctx context.Context, svc *service.Service, data []byte) (inserted, failed int, err error) {
	var doc map[string][]map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, 0, fmt.Errorf("parse seed file: %w", err)
	}

	known := map[string]bool{}
	for _, k := range content.Kinds() {
		known[k.Path] = true
		for i, rec := range doc[k.Path] {
			body, err := json.Marshal(rec)
			if err != nil {
				logger.Errorf("%s[%d]: encode: %v", k.Path, i, err)
				failed++
				continue
			}
			id, err := svc.Create(ctx, k, body)
			if err != nil {
				var verr *schema.ValidationError
				if errors.As(err, &verr) {
					logger.Errorf("%s[%d]: %v", k.Path, i, verr)
				} else {
					logger.Errorf("%s[%d]: insert: %v", k.Path, i, err)
				}
				failed++
				continue
			}
			logger.Debugf("%s[%d]: inserted %s", k.Path, i, id)
			inserted++
		}
	}

	var unknown []string
	for key, recs := range doc {
		if !known[key] {
			unknown = append(unknown, key)
			failed += len(recs)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		logger.Errorf("unknown section %q (%d records skipped)", key, len(doc[key]))
	}
	return inserted, failed, nil
}
