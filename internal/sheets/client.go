package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"salon-agent/internal/config"
	"salon-agent/internal/logging"
	"salon-agent/internal/metrics"
)

var ErrNoCredentials = errors.New(
	"no Google credentials found: set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE",
)

// Client appends rows to a fixed spreadsheet. It is constructed once at
// process start and injected wherever the remote sink is needed.
type Client struct {
	Service        *sheets.Service
	CircuitBreaker *gobreaker.CircuitBreaker[any]
	SpreadsheetID  string
}

func NewClient(ctx context.Context) (*Client, error) {
	credentials, err := loadCredentials()
	if err != nil {
		return nil, err
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentials, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	service, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	logging.Logger.Info("Successfully connected to Google Sheets",
		zap.String("spreadsheet_id", config.Conf.SpreadsheetID),
	)

	return &Client{
		Service:        service,
		CircuitBreaker: newCircuitBreaker(),
		SpreadsheetID:  config.Conf.SpreadsheetID,
	}, nil
}

// loadCredentials prefers the inline JSON env variable (production) and falls
// back to a key file on disk (local development).
func loadCredentials() ([]byte, error) {
	if config.Conf.GoogleServiceAccountJSON != "" {
		return []byte(config.Conf.GoogleServiceAccountJSON), nil
	}

	if config.Conf.GoogleServiceAccountFile != "" {
		data, err := os.ReadFile(config.Conf.GoogleServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read service account file: %w", err)
		}

		return data, nil
	}

	return nil, ErrNoCredentials
}

func newCircuitBreaker() *gobreaker.CircuitBreaker[any] {
	settings := gobreaker.Settings{
		Name:     "sheets",
		Interval: time.Duration(config.Conf.SheetsIntervalCB) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.Conf.SheetsConsecutiveFailuresCB
		},
		OnStateChange: func(name string, fromState, toState gobreaker.State) {
			logging.Logger.Warn("Circuit state changed",
				zap.String("service", name),
				zap.String("from", fromState.String()),
				zap.String("to", toState.String()),
			)

			if toState == gobreaker.StateOpen {
				metrics.CircuitOpen.WithLabelValues(name).Inc()
			}
		},
	}

	return gobreaker.NewCircuitBreaker[any](settings)
}

// AppendRow appends one row after the current data of the named sheet tab.
// The tab's header row is assumed to exist and is never written here.
func (c *Client) AppendRow(ctx context.Context, sheetName string, row []string) error {
	values := make([]any, len(row))
	for i, cell := range row {
		values[i] = cell
	}

	_, err := c.CircuitBreaker.Execute(func() (any, error) {
		valueRange := &sheets.ValueRange{Values: [][]any{values}}

		_, err := c.Service.Spreadsheets.Values.
			Append(c.SpreadsheetID, sheetName+"!A1", valueRange).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		if err != nil {
			logging.Logger.Error("Sheets append failed",
				zap.String("sheet", sheetName),
				zap.String("error", err.Error()),
			)

			return nil, err
		}

		return nil, nil
	})
	if err != nil {
		return err
	}

	logging.Logger.Info("Sheet row appended", zap.String("sheet", sheetName))

	return nil
}
