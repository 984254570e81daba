package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/splitflow/internal/common"
	"github.com/Veraticus/splitflow/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Reader fetches row data from the promotions spreadsheet.
type Reader struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewReader creates a new Google Sheets reader.
func NewReader(ctx context.Context, config Config, logger *slog.Logger) (*Reader, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	svc, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Reader{
		config:  config,
		service: svc,
		logger:  logger,
	}, nil
}

// ListTabs returns the titles of every sheet tab in the spreadsheet.
func (r *Reader) ListTabs(ctx context.Context) ([]string, error) {
	var spreadsheet *sheets.Spreadsheet

	err := common.WithRetry(ctx, func() error {
		var getErr error
		spreadsheet, getErr = r.service.Spreadsheets.Get(r.config.SpreadsheetID).
			Fields("sheets.properties.title").Context(ctx).Do()
		return getErr
	}, r.retryOpts())
	if err != nil {
		return nil, fmt.Errorf("failed to list tabs: %w", err)
	}

	tabs := make([]string, 0, len(spreadsheet.Sheets))
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil {
			tabs = append(tabs, sheet.Properties.Title)
		}
	}
	return tabs, nil
}

// RowData fetches one sheet row as a header-keyed map, the shape the
// automation endpoint expects in its sheet_data field. Row numbers are
// 1-based as the backend reports them; row 1 holds the headers.
func (r *Reader) RowData(ctx context.Context, tab string, googleRow int) (map[string]any, error) {
	if googleRow < 2 {
		return nil, fmt.Errorf("row %d is not a data row", googleRow)
	}

	ranges := []string{
		fmt.Sprintf("'%s'!1:1", tab),
		fmt.Sprintf("'%s'!%d:%d", tab, googleRow, googleRow),
	}

	var resp *sheets.BatchGetValuesResponse
	err := common.WithRetry(ctx, func() error {
		var getErr error
		resp, getErr = r.service.Spreadsheets.Values.BatchGet(r.config.SpreadsheetID).
			Ranges(ranges...).Context(ctx).Do()
		return getErr
	}, r.retryOpts())
	if err != nil {
		return nil, fmt.Errorf("failed to read row %d from %q: %w", googleRow, tab, err)
	}

	if len(resp.ValueRanges) != 2 ||
		len(resp.ValueRanges[0].Values) == 0 ||
		len(resp.ValueRanges[1].Values) == 0 {
		return nil, fmt.Errorf("row %d of %q is empty", googleRow, tab)
	}

	headers := resp.ValueRanges[0].Values[0]
	values := resp.ValueRanges[1].Values[0]

	data := make(map[string]any, len(headers))
	for i, header := range headers {
		name, ok := header.(string)
		if !ok || name == "" {
			continue
		}
		if i < len(values) {
			data[name] = values[i]
		} else {
			data[name] = ""
		}
	}

	r.logger.Debug("fetched sheet row", "tab", tab, "row", googleRow, "columns", len(data))
	return data, nil
}

func (r *Reader) retryOpts() service.RetryOptions {
	opts := service.DefaultRetryOptions()
	if r.config.RetryAttempts > 0 {
		opts.MaxAttempts = r.config.RetryAttempts
	}
	if r.config.RetryDelay > 0 {
		opts.InitialDelay = r.config.RetryDelay
	}
	return opts
}

// createSheetsService creates a Google Sheets API service using either a
// service account key or OAuth2 refresh-token credentials.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsReadonlyScope},
		}
		token := &oauth2.Token{RefreshToken: config.RefreshToken}
		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	svc, err := sheets.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return svc, nil
}
