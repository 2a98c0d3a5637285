package matchmaking

import (
	"context"
	"fmt"
	"strings"

	"investmate-backend/internal/aiclient"
	"investmate-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MatchForStartup suggests partners and investors for a startup. AI
// suggestions are resolved against stored profiles; when the AI is
// unavailable or none of its suggestions resolve, investors in the startup's
// industry are returned instead, then any investors.
func (s *Service) MatchForStartup(ctx context.Context, startup *models.Startup) (*MatchResult, error) {
	op := aiclient.OpMatchmakingStartup

	var suggested []Match
	if res := s.call(ctx, op, startup); res != nil {
		suggested = s.resolve(ctx, res.Items(), s.resolveForStartup)
		if countResolved(suggested) > 0 {
			s.observe(op, SourceAI)
			return &MatchResult{Matches: suggested, Source: SourceAI}, nil
		}
		s.log.Info(ctx, "no ai match resolved, using fallback", "operation", string(op), "suggested", len(suggested))
	}

	investors, err := s.investors.FindBySector(ctx, startup.Industry, fallbackLimit)
	if err != nil {
		return nil, err
	}
	if len(investors) == 0 {
		if investors, err = s.investors.FindAny(ctx, fallbackLimit); err != nil {
			return nil, err
		}
	}

	matches := make([]Match, 0, len(investors))
	for i := range investors {
		m := investorMatch(&investors[i], i)
		m.AIReason = reasonAt(suggested, i, fmt.Sprintf("Investor interested in %s", orDefault(strings.Join(investors[i].FocusSectors(), ", "), "various sectors")))
		matches = append(matches, m)
	}

	s.observe(op, SourceFallback)
	return &MatchResult{Matches: matches, Source: SourceFallback, Note: fallbackNote}, nil
}

// MatchForInvestor suggests startups for an investor, falling back to
// startups in the investor's sectors, then any startups.
func (s *Service) MatchForInvestor(ctx context.Context, investor *models.Investor) (*MatchResult, error) {
	op := aiclient.OpMatchmakingInvestor

	var suggested []Match
	if res := s.call(ctx, op, investor); res != nil {
		suggested = s.resolve(ctx, res.Items(), s.resolveForInvestor)
		if countResolved(suggested) > 0 {
			s.observe(op, SourceAI)
			return &MatchResult{Matches: suggested, Source: SourceAI}, nil
		}
		s.log.Info(ctx, "no ai match resolved, using fallback", "operation", string(op), "suggested", len(suggested))
	}

	startups, err := s.startups.FindByIndustries(ctx, investor.FocusSectors(), fallbackLimit)
	if err != nil {
		return nil, err
	}
	if len(startups) == 0 {
		if startups, err = s.startups.FindAny(ctx, fallbackLimit); err != nil {
			return nil, err
		}
	}

	matches := make([]Match, 0, len(startups))
	for i := range startups {
		m := startupMatch(&startups[i], i)
		m.AIReason = reasonAt(suggested, i, fmt.Sprintf("%s startup in %s", orDefault(startups[i].Stage, "Early-stage"), orDefault(startups[i].Industry, "an emerging sector")))
		matches = append(matches, m)
	}

	s.observe(op, SourceFallback)
	return &MatchResult{Matches: matches, Source: SourceFallback, Note: fallbackNote}, nil
}

// resolver turns a stored user id into a match, or nil when no profile exists.
type resolver func(ctx context.Context, userID bson.ObjectID, index int) (*Match, error)

func (s *Service) resolve(ctx context.Context, items []map[string]any, lookup resolver) []Match {
	matches := make([]Match, 0, len(items))
	for i, item := range items {
		reason := aiReason(item)

		if id, ok := itemUserID(item); ok {
			m, err := lookup(ctx, id, i)
			if err != nil {
				s.log.Error(ctx, "resolving ai match", "user_id", id.Hex(), "err", err)
			} else if m != nil {
				if reason != "" {
					m.AIReason = reason
				}
				matches = append(matches, *m)
				continue
			}
		}

		matches = append(matches, Match{
			Name:       fmt.Sprintf("Partner %d", i+1),
			AIReason:   orDefault(reason, "AI matched suggestion"),
			MatchIndex: i + 1,
			NotFound:   true,
			RawData:    item,
		})
	}
	return matches
}

// resolveForStartup prefers a partner startup and then an investor.
func (s *Service) resolveForStartup(ctx context.Context, userID bson.ObjectID, index int) (*Match, error) {
	partner, err := s.startups.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if partner != nil {
		m := startupMatch(partner, index)
		m.AIReason = "AI matched as potential partner"
		return &m, nil
	}

	investor, err := s.investors.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if investor != nil {
		m := investorMatch(investor, index)
		m.AIReason = "AI matched as potential investor"
		return &m, nil
	}
	return nil, nil
}

func (s *Service) resolveForInvestor(ctx context.Context, userID bson.ObjectID, index int) (*Match, error) {
	startup, err := s.startups.FindByUserID(ctx, userID)
	if err != nil || startup == nil {
		return nil, err
	}
	m := startupMatch(startup, index)
	m.AIReason = "AI matched as potential investment"
	return &m, nil
}

func startupMatch(st *models.Startup, index int) Match {
	return Match{
		ID:             st.ID.Hex(),
		Type:           models.RoleStartup,
		Name:           st.StartupName,
		Tagline:        st.Tagline,
		FounderName:    st.FounderName,
		Industry:       st.Industry,
		Stage:          st.Stage,
		Location:       st.Location,
		ProfilePicture: orDefault(st.ProfilePicture, models.DefaultAvatar),
		MatchIndex:     index + 1,
	}
}

func investorMatch(inv *models.Investor, index int) Match {
	return Match{
		ID:             inv.ID.Hex(),
		Type:           models.RoleInvestor,
		Name:           inv.FullName,
		Firm:           inv.Firm,
		Sectors:        inv.FocusSectors(),
		Location:       inv.Location,
		ProfilePicture: orDefault(inv.ProfilePicture, models.DefaultAvatar),
		MatchIndex:     index + 1,
	}
}

// itemUserID reads the user id under any of the spellings the AI uses.
func itemUserID(item map[string]any) (bson.ObjectID, bool) {
	for _, key := range []string{"userId", "userid", "user_id"} {
		if s, ok := item[key].(string); ok && s != "" {
			id, err := bson.ObjectIDFromHex(s)
			if err != nil {
				return bson.ObjectID{}, false
			}
			return id, true
		}
	}
	return bson.ObjectID{}, false
}

func aiReason(item map[string]any) string {
	for _, key := range []string{"explanation", "reason"} {
		if s, ok := item[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// reasonAt reuses the AI's reason at the same position, if there was one.
func reasonAt(suggested []Match, i int, def string) string {
	if i < len(suggested) && suggested[i].AIReason != "" {
		return suggested[i].AIReason
	}
	return def
}

func countResolved(matches []Match) int {
	n := 0
	for _, m := range matches {
		if !m.NotFound {
			n++
		}
	}
	return n
}
