package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagement-insights/config"
	"engagement-insights/services"
	"engagement-insights/ui"
	"engagement-insights/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		EngagementSource: config.SourceMock,
		AnalysisMode:     config.AnalysisLocal,
	}
}

func TestNewSource(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "engagement.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("post_type,likes,shares,comments\nreels,10,2,1\n"), 0o644))

	tests := []struct {
		name    string
		source  string
		wantErr bool
	}{
		{"mock", config.SourceMock, false},
		{"csv", config.SourceCSV, false},
		{"unknown", "sheet", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.EngagementSource = tt.source
			cfg.CSVPath = csvPath

			src, err := newSource(context.Background(), cfg, utils.NewNopLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer src.Close()

			records, ok, err := src.Fetch(context.Background(), "reels")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.NotEmpty(t, records)
		})
	}
}

func TestNewAnalyzer(t *testing.T) {
	cfg := testConfig()
	a, err := newAnalyzer(cfg, utils.NewNopLogger(), nil)
	require.NoError(t, err)
	assert.IsType(t, &services.InsightService{}, a)

	cfg.AnalysisMode = config.AnalysisRemote
	_, err = newAnalyzer(cfg, utils.NewNopLogger(), nil)
	assert.ErrorContains(t, err, "LANGFLOW_TOKEN")

	cfg.LangflowBaseURL = "http://localhost:1"
	cfg.LangflowToken = "tok"
	cfg.LangflowFlowID = "flow"
	cfg.LangflowTenantID = "tenant"
	cfg.LangflowTweaks = `{"ChatInput-1":{"should_store_message":false}}`
	a, err = newAnalyzer(cfg, utils.NewNopLogger(), nil)
	require.NoError(t, err)
	assert.IsType(t, &services.RemoteAnalyzer{}, a)

	cfg.LangflowTweaks = "{"
	_, err = newAnalyzer(cfg, utils.NewNopLogger(), nil)
	assert.ErrorContains(t, err, "LANGFLOW_TWEAKS")

	cfg.AnalysisMode = "magic"
	_, err = newAnalyzer(cfg, utils.NewNopLogger(), nil)
	assert.Error(t, err)
}

type brokenStdin struct {
	calls int
}

func (r *brokenStdin) Read([]byte) (int, error) {
	r.calls++
	return 0, errors.New("input/output error")
}

func TestRunUntilEOFStopsOnReadError(t *testing.T) {
	deps, cleanup, err := buildDeps(context.Background(), testConfig(), utils.NewNopLogger(), nil)
	require.NoError(t, err)
	defer cleanup()

	in := &brokenStdin{}
	var out bytes.Buffer
	prompter := ui.NewLinePrompter(in, &out)
	ctrl := ui.NewController(deps, ui.Surface{
		Prompter: prompter,
		Alerter:  ui.NewWriterAlerter(&out),
		Region:   ui.NewTerminalRegion(&out),
	})

	done := make(chan error, 1)
	go func() { done <- runUntilEOF(context.Background(), ctrl, prompter) }()
	select {
	case err := <-done:
		assert.ErrorContains(t, err, "input/output error")
	case <-time.After(2 * time.Second):
		t.Fatal("runUntilEOF kept looping after a read error")
	}
	assert.Equal(t, 1, in.calls)
	assert.Equal(t, 1, strings.Count(out.String(), ui.MsgFailure))
}

func TestRunUntilEOF(t *testing.T) {
	deps, cleanup, err := buildDeps(context.Background(), testConfig(), utils.NewNopLogger(), nil)
	require.NoError(t, err)
	defer cleanup()

	var out bytes.Buffer
	prompter := ui.NewLinePrompter(strings.NewReader("carousel\nstory\n"), &out)
	ctrl := ui.NewController(deps, ui.Surface{
		Prompter: prompter,
		Alerter:  ui.NewWriterAlerter(&out),
		Region:   ui.NewTerminalRegion(&out),
	})

	require.NoError(t, runUntilEOF(context.Background(), ctrl, prompter))
	assert.Contains(t, out.String(), "POST TYPE: CAROUSEL")
	assert.Contains(t, out.String(), ui.MsgNoData)
	assert.Contains(t, out.String(), ui.MsgNoInput)
}
