package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"samparkdash/internal/config"
	"samparkdash/internal/drilldown"
	"samparkdash/internal/indicators"
	"samparkdash/internal/sampark"
	"samparkdash/internal/session"
	"samparkdash/internal/store"
)

//go:generate mockgen -destination=../mock_source_test.go -package=main samparkdash/cmd Source

// Source is what the dashboard needs from the Sampark API. Both
// *sampark.Client and sampark.Demo implement it.
type Source interface {
	RequestOTP(ctx context.Context, phone string) (sampark.OTPResult, error)
	ValidateOTP(ctx context.Context, phone, otp string) (sampark.Credentials, error)
	DistrictWise(ctx context.Context, token string, q sampark.StateQuery) (indicators.StateDataset, error)
	DistrictLevel(ctx context.Context, token string, q sampark.DistrictQuery) (indicators.DistrictDataset, error)
	DataInsights(ctx context.Context, token string, q sampark.InsightsQuery) (indicators.BlockDataset, error)
}

var (
	// ErrNotLoggedIn is returned when no saved session exists.
	ErrNotLoggedIn = errors.New("not logged in, run the login command first")
	// ErrNoDistrict is returned for block data before a district was chosen.
	ErrNoDistrict = errors.New("no district selected")
)

// Dashboard loads the datasets one session may see.
type Dashboard struct {
	Source  Source
	Config  *config.Config
	Session *session.Session
}

// Load fetches the dataset behind level. id is the district id at district
// level and the block id at block level. Block data is scoped to the
// session's selected district.
func (d Dashboard) Load(ctx context.Context, level drilldown.Level, id string) (indicators.Dataset, error) {
	if d.Session == nil {
		return nil, ErrNotLoggedIn
	}
	token := d.Session.Token
	stateID := d.Session.User.State

	switch level {
	case drilldown.State:
		ds, err := d.Source.DistrictWise(ctx, token, sampark.StateQuery{StateID: stateID, Session: d.Config.Session, Des: d.Config.Des})
		if err != nil {
			return nil, err
		}
		return ds, nil
	case drilldown.District:
		ds, err := d.Source.DistrictLevel(ctx, token, sampark.DistrictQuery{StateID: stateID, DistrictID: id, Session: d.Config.Session})
		if err != nil {
			return nil, err
		}
		return ds, nil
	case drilldown.Block:
		if d.Session.District == nil {
			return nil, ErrNoDistrict
		}
		ds, err := d.Source.DataInsights(ctx, token, sampark.InsightsQuery{
			StateID:    stateID,
			DistrictID: d.Session.District.ID,
			BlockID:    id,
			Session:    d.Config.Session,
		})
		if err != nil {
			return nil, err
		}
		return ds, nil
	}
	return nil, fmt.Errorf("no dataset at %s level", level)
}

// OpenSource returns the demo source in demo mode and otherwise an API
// client whose dataset calls are cached in the DuckDB snapshot store.
func OpenSource(cfg *config.Config, logger *slog.Logger) (Source, func(), error) {
	if cfg.Demo {
		return sampark.Demo{}, func() {}, nil
	}
	if cfg.APIURL == "" {
		return nil, nil, fmt.Errorf("%w: set %s_API_URL or use --demo", sampark.ErrNoBaseURL, config.EnvPrefix)
	}

	opts := []sampark.Option{sampark.WithLogger(logger)}
	cleanup := func() {}
	db, err := store.NewDB(cfg.DataDir, logger)
	if err != nil {
		logger.Warn("Snapshot store unavailable, fetching every dataset live", "error", err)
	} else {
		opts = append(opts, sampark.WithSnapshots(db, cfg.SnapshotTTL))
		cleanup = func() { db.Close() }
	}
	return sampark.NewClient(cfg.APIURL, opts...), cleanup, nil
}

// demoSession logs the demo user in without touching disk.
func demoSession(ctx context.Context) (*session.Session, error) {
	creds, err := sampark.Demo{}.ValidateOTP(ctx, "0000000000", "demo")
	if err != nil {
		return nil, err
	}
	return session.New(creds), nil
}

// LoadSession returns the saved CLI session, or a throwaway one in demo mode.
func LoadSession(ctx context.Context, cfg *config.Config) (*session.Session, error) {
	sess, err := session.LoadFile(cfg.SessionFile())
	if err == nil {
		return sess, nil
	}
	if cfg.Demo {
		return demoSession(ctx)
	}
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrNotLoggedIn
	}
	return nil, err
}

// These variables will be set by main package
var (
	SetupLogger func(dataDir string) (*slog.Logger, error)
	LaunchTUI   func(cfg *config.Config, src Source, logger *slog.Logger) error
	StartServer func(cfg *config.Config, src Source, logger *slog.Logger) error
	Summarize   func(ctx context.Context, apiKey string, t *indicators.Table) (string, error)
	RenderGuide func(width int) (string, error)
)

// HandleError prints error and exits
func HandleError(err error, message string) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, sampark.Message(err))
	os.Exit(1)
}
