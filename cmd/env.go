package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/misinfo-cli/internal/acquire"
	"github.com/sells-group/misinfo-cli/internal/config"
	"github.com/sells-group/misinfo-cli/internal/fetcher"
	"github.com/sells-group/misinfo-cli/internal/model"
	"github.com/sells-group/misinfo-cli/internal/monitoring"
	"github.com/sells-group/misinfo-cli/internal/pipeline"
	"github.com/sells-group/misinfo-cli/internal/sheet"
	"github.com/sells-group/misinfo-cli/internal/store"
	"github.com/sells-group/misinfo-cli/pkg/reddit"
	"github.com/sells-group/misinfo-cli/pkg/sheets"
)

// initEnv validates the configuration for mode and builds the clients it
// needs. The test mode gets no network clients. Callers should defer
// env.Close().
func initEnv(ctx context.Context, mode model.RunMode) (*pipeline.Env, error) {
	if err := cfg.Validate(string(mode)); err != nil {
		return nil, err
	}

	env := &pipeline.Env{Config: cfg, Out: os.Stdout}
	if mode == model.RunModeTest {
		return env, nil
	}

	table, err := initTable(ctx)
	if err != nil {
		return nil, err
	}
	env.Table = table
	env.Reddit = initReddit()
	env.Files = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{UserAgent: cfg.Reddit.UserAgent})
	env.Alerter = monitoring.NewAlerter(cfg.Monitoring)

	if cfg.Collect.Progress {
		env.Progress = acquire.NewBarProgress(os.Stderr)
	} else {
		env.Progress = &acquire.LogProgress{Every: 100}
	}

	st, err := initStore(ctx)
	if err != nil {
		zap.L().Warn("run ledger unavailable, runs will not be recorded", zap.Error(err))
	} else {
		env.Store = st
		env.OnClose(st.Close)
	}

	return env, nil
}

func initReddit() reddit.Client {
	opts := []reddit.Option{reddit.WithRateLimit(cfg.Reddit.RequestsPerSecond, cfg.Reddit.Burst)}
	if cfg.Reddit.BaseURL != "" {
		opts = append(opts, reddit.WithBaseURL(cfg.Reddit.BaseURL))
	}
	if cfg.Reddit.TokenURL != "" {
		opts = append(opts, reddit.WithTokenURL(cfg.Reddit.TokenURL))
	}
	return reddit.NewClient(reddit.Credentials{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		UserAgent:    cfg.Reddit.UserAgent,
	}, opts...)
}

func initTable(ctx context.Context) (sheet.Table, error) {
	switch cfg.Sheets.Backend {
	case config.BackendXLSX:
		wb, err := sheet.OpenWorkbook(cfg.Sheets.WorkbookPath)
		if err != nil {
			return nil, err
		}
		zap.L().Info("using local workbook", zap.String("path", wb.Path()))
		return wb, nil
	case config.BackendGoogle:
		creds, err := os.ReadFile(cfg.Sheets.CredentialsFile)
		if err != nil {
			return nil, eris.Wrapf(err, "read sheets credentials %s", cfg.Sheets.CredentialsFile)
		}
		var opts []sheets.Option
		if cfg.Sheets.BaseURL != "" {
			opts = append(opts, sheets.WithBaseURL(cfg.Sheets.BaseURL))
		}
		client, err := sheets.NewClient(ctx, creds, opts...)
		if err != nil {
			return nil, err
		}
		return sheet.NewGoogle(client, cfg.Sheets.SpreadsheetID), nil
	default:
		return nil, eris.Errorf("unsupported sheets backend: %s", cfg.Sheets.Backend)
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
}
