package matchmaking

import (
	"context"
	"fmt"
	"strings"

	"investmate-backend/internal/aiclient"
	"investmate-backend/internal/models"
)

func (s *Service) CoachInvestor(ctx context.Context, investor *models.Investor) Coaching {
	if res := s.call(ctx, aiclient.OpInvestorCoach, investor); res != nil {
		s.observe(aiclient.OpInvestorCoach, SourceAI)
		return Coaching{Advice: res.Value(), Source: SourceAI}
	}
	s.observe(aiclient.OpInvestorCoach, SourceFallback)
	return Coaching{Advice: investorCoachFallback(investor), Source: SourceFallback}
}

func (s *Service) CoachStartup(ctx context.Context, startup *models.Startup) Coaching {
	if res := s.call(ctx, aiclient.OpStartupCoach, startup); res != nil {
		s.observe(aiclient.OpStartupCoach, SourceAI)
		return Coaching{Advice: res.Value(), Source: SourceAI}
	}
	s.observe(aiclient.OpStartupCoach, SourceFallback)
	return Coaching{Advice: startupCoachFallback(startup), Source: SourceFallback}
}

type Tip struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type InvestorAdvice struct {
	Greeting string `json:"greeting"`
	Tips     []Tip  `json:"tips"`
	Summary  string `json:"summary"`
}

type StartupAnalysis struct {
	ProfileSummary   string `json:"profile_summary"`
	MarketPosition   string `json:"market_position"`
	FundingReadiness string `json:"funding_readiness"`
}

type CoachVerdict struct {
	NextSteps string `json:"next_steps"`
	FocusArea string `json:"focus_area"`
	Overall   string `json:"overall"`
}

type StartupAdvice struct {
	Analysis         StartupAnalysis `json:"analysis"`
	ActionableAdvice []string        `json:"actionable_advice"`
	CoachVerdict     CoachVerdict    `json:"coach_verdict"`
}

func investorCoachFallback(inv *models.Investor) InvestorAdvice {
	sectors := orDefault(strings.Join(inv.FocusSectors(), ", "), "technology")
	ticket := orDefault(inv.TicketSize, "₹10L - ₹50L")
	name := orDefault(inv.FullName, "Investor")

	return InvestorAdvice{
		Greeting: fmt.Sprintf("Welcome back, %s!", name),
		Tips: []Tip{
			{
				Title:   "Portfolio Diversification",
				Content: fmt.Sprintf("Consider diversifying across %s subsectors to reduce risk while maintaining exposure to high-growth opportunities.", sectors),
			},
			{
				Title:   "Due Diligence Focus",
				Content: fmt.Sprintf("For your %s ticket size, prioritize startups with clear unit economics and a path to profitability within 18-24 months.", ticket),
			},
			{
				Title:   "Market Trends",
				Content: fmt.Sprintf("The %s space is seeing increased activity. Look for startups solving genuine pain points with defensible technology.", sectors),
			},
			{
				Title:   "Founder Assessment",
				Content: "Evaluate founder-market fit carefully. The best founders have deep domain expertise and relentless execution focus.",
			},
		},
		Summary: fmt.Sprintf("Based on your focus on %s, we recommend actively engaging with early-stage startups that demonstrate strong product-market fit signals.", sectors),
	}
}

func startupCoachFallback(st *models.Startup) StartupAdvice {
	industry := orDefault(st.Industry, "technology")
	stage := orDefault(st.Stage, "early-stage")
	funding := orDefault(st.FundingNeeded, orDefault(st.Funding, "seed funding"))
	name := orDefault(st.FounderName, orDefault(st.StartupName, "Founder"))

	return StartupAdvice{
		Analysis: StartupAnalysis{
			ProfileSummary:   fmt.Sprintf("Welcome back, %s! Your %s %s startup is on an exciting journey.", name, stage, industry),
			MarketPosition:   fmt.Sprintf("As a %s company in %s, you're entering a dynamic and growing market with significant opportunities.", stage, industry),
			FundingReadiness: fmt.Sprintf("You're seeking %s. Focus on demonstrating clear traction and unit economics to attract the right investors.", funding),
		},
		ActionableAdvice: []string{
			fmt.Sprintf("For %s startups in %s, focus on demonstrating clear problem-solution fit and early traction metrics in your pitch deck.", stage, industry),
			fmt.Sprintf("When seeking %s, prioritize investors with portfolio companies in %s who understand your market dynamics.", funding, industry),
			"Track and highlight key metrics like user growth, engagement rates, and unit economics to build investor confidence.",
			"Leverage warm introductions through your network. Investors are 4x more likely to respond to referred founders.",
		},
		CoachVerdict: CoachVerdict{
			NextSteps: "Refine your pitch deck with clear problem-solution narrative and identify 10 target investors this week.",
			FocusArea: "Prepare your data room with financials and metrics while practicing your pitch.",
			Overall:   fmt.Sprintf("Focus on building strong traction in %s while preparing compelling materials for your %s round.", industry, funding),
		},
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
