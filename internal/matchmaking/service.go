// Package matchmaking serves AI coaching and matchmaking. It asks the external
// AI service first and degrades to templated advice or database lookups when
// the service is missing, failing, or returns nothing usable.
package matchmaking

import (
	"context"

	"investmate-backend/internal/aiclient"
	"investmate-backend/internal/logging"
	"investmate-backend/internal/metrics"
	"investmate-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	SourceAI       = "ai"
	SourceFallback = "fallback"

	// fallbackLimit is how many profiles a database fallback returns.
	fallbackLimit = 5

	fallbackNote = "Showing alternative matches from our database"
)

// AI is the external service, satisfied by *aiclient.Client.
type AI interface {
	Call(ctx context.Context, op aiclient.Operation, profile any) (*aiclient.Result, error)
}

type StartupFinder interface {
	FindByUserID(ctx context.Context, userID bson.ObjectID) (*models.Startup, error)
	FindByIndustries(ctx context.Context, industries []string, limit int64) ([]models.Startup, error)
	FindAny(ctx context.Context, limit int64) ([]models.Startup, error)
}

type InvestorFinder interface {
	FindByUserID(ctx context.Context, userID bson.ObjectID) (*models.Investor, error)
	FindBySector(ctx context.Context, sector string, limit int64) ([]models.Investor, error)
	FindAny(ctx context.Context, limit int64) ([]models.Investor, error)
}

type Service struct {
	ai        AI
	startups  StartupFinder
	investors InvestorFinder
	metrics   *metrics.Metrics
	log       logging.Logger
}

func NewService(ai AI, startups StartupFinder, investors InvestorFinder, m *metrics.Metrics, log logging.Logger) *Service {
	return &Service{
		ai:        ai,
		startups:  startups,
		investors: investors,
		metrics:   m,
		log:       log,
	}
}

// Coaching is the advice payload plus where it came from.
type Coaching struct {
	Advice any    `json:"coaching"`
	Source string `json:"source"`
}

// Match is one matchmaking suggestion. Type is "startup" or "investor";
// NotFound marks AI suggestions that could not be resolved to a profile.
type Match struct {
	ID             string         `json:"_id,omitempty"`
	Type           string         `json:"type,omitempty"`
	Name           string         `json:"name"`
	Tagline        string         `json:"tagline,omitempty"`
	FounderName    string         `json:"founderName,omitempty"`
	Industry       string         `json:"industry,omitempty"`
	Stage          string         `json:"stage,omitempty"`
	Firm           string         `json:"firm,omitempty"`
	Sectors        []string       `json:"sectors,omitempty"`
	Location       string         `json:"location,omitempty"`
	ProfilePicture string         `json:"profilePicture,omitempty"`
	AIReason       string         `json:"aiReason"`
	MatchIndex     int            `json:"matchIndex,omitempty"`
	NotFound       bool           `json:"notFound,omitempty"`
	RawData        map[string]any `json:"rawData,omitempty"`
}

type MatchResult struct {
	Matches []Match `json:"matches"`
	Source  string  `json:"source"`
	Note    string  `json:"note,omitempty"`
}

func (s *Service) call(ctx context.Context, op aiclient.Operation, profile any) *aiclient.Result {
	res, err := s.ai.Call(ctx, op, profile)
	if err != nil {
		s.log.Warn(ctx, "ai call failed, using fallback", "operation", string(op), "err", err)
		return nil
	}
	return res
}

func (s *Service) observe(op aiclient.Operation, source string) {
	s.metrics.ObserveAI(string(op), source)
}
