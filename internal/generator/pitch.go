package generator

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/ideaforge/internal/models"
)

// Slide titles, in deck order.
const (
	SlideProblem   = "The Problem"
	SlideSolution  = "Our Solution"
	SlideAudience  = "Target Audience"
	SlideHowItWork = "How It Works"
	SlideTechStack = "Tech Stack Summary"
	SlideRevenue   = "Revenue Model"
	SlideMVP       = "MVP Development Plan"
	SlideNextSteps = "Ready to Build This?"
)

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// GeneratePitchDeck returns the eight-slide investor deck for idea.
func GeneratePitchDeck(idea string) []models.PitchSlide {
	sig := detect(idea)

	var secondary string
	switch {
	case sig.social:
		secondary = "Secondary: Community builders, content creators, and social media managers"
	case sig.booking:
		secondary = "Secondary: Service providers looking to streamline their booking processes"
	default:
		secondary = "Secondary: Professionals and freelancers seeking productivity tools"
	}

	var configure string
	switch {
	case sig.marketplace:
		configure = "4. Browse available services, compare options, or list your own services"
	case sig.booking:
		configure = "4. Set availability, configure services, and enable automated booking"
	default:
		configure = "4. Configure dashboard, connect integrations, and customize workflow"
	}

	var pricing string
	switch {
	case sig.payments:
		pricing = "Transaction fees: 2-3% commission on processed payments"
	case sig.b2b:
		pricing = "SaaS subscription: Tiered pricing from $29/month (Basic) to $199/month (Enterprise)"
	default:
		pricing = "Freemium model: Free tier with premium features starting at $9.99/month"
	}

	return []models.PitchSlide{
		{Title: SlideProblem, Content: []string{
			pick(sig.marketplace,
				"Fragmented market with no centralized solution for connecting providers and consumers",
				"Current solutions are outdated, inefficient, and don't meet modern user expectations"),
			pick(sig.mobile,
				"Users need on-the-go access but existing mobile solutions are limited or non-existent",
				"Desktop-only solutions don't accommodate today's mobile-first world"),
			pick(sig.b2b,
				"Businesses waste countless hours on manual processes and outdated systems",
				"Consumers face unnecessary friction and complexity in their daily tasks"),
			pick(sig.booking,
				"Scheduling and booking processes are still largely manual and time-consuming",
				"Existing alternatives are either too complex for beginners or too basic for power users"),
			"This market gap creates a significant opportunity for an innovative, user-centric solution",
		}},
		{Title: SlideSolution, Content: []string{
			capitalize(strings.TrimSpace(idea)) + " - reimagined for the modern digital landscape",
			"Intuitive, user-friendly interface designed with efficiency and simplicity in mind",
			pick(sig.mobile,
				"Mobile-first approach with seamless cross-platform synchronization",
				"Responsive web application accessible from any device, anywhere"),
			pick(sig.booking,
				"Automated scheduling with smart conflict resolution and notifications",
				"Intelligent automation that reduces manual work and eliminates human error"),
			"Built with scalability, security, and performance as core principles",
			"Directly addresses identified pain points with innovative, tested features",
		}},
		{Title: SlideAudience, Content: []string{
			pick(sig.b2b,
				"Primary: Small to medium businesses (10-500 employees) seeking digital transformation",
				"Primary: Tech-savvy consumers aged 25-45 who value efficiency and quality"),
			secondary,
			pick(sig.marketplace,
				"Tertiary: Both service providers looking to expand reach and consumers seeking convenience",
				"Tertiary: Early adopters who embrace new technology and innovative solutions"),
			fmt.Sprintf("Geographic focus: Initially %s, expanding globally",
				pick(sig.b2b, "North America and Europe", "English-speaking markets")),
			fmt.Sprintf("Market size: %s with %s",
				pick(sig.b2b, "50M+ businesses", "100M+ potential users"),
				pick(sig.payments, "high monetization potential", "strong engagement metrics")),
		}},
		{Title: SlideHowItWork, Content: []string{
			"1. User registration with streamlined onboarding and guided setup process",
			pick(sig.mobile,
				"2. Download mobile app or access responsive web platform with account sync",
				"2. Access web platform from any device with automatic data synchronization"),
			"3. Complete personalized profile setup with preferences and customization options",
			configure,
			"5. Utilize core features with intelligent recommendations and automation",
			pick(sig.payments,
				"6. Process payments securely with integrated billing and invoicing",
				"6. Track progress, analyze usage, and optimize performance"),
			"7. Scale usage with advanced features, team collaboration, and enterprise options",
		}},
		{Title: SlideTechStack, Content: []string{
			"Frontend: React + TypeScript for robust, maintainable user interface",
			"Backend: Node.js + Express for scalable API and business logic",
			"Database: PostgreSQL for reliable data storage with ACID compliance",
			pick(sig.mobile,
				"Mobile: React Native for cross-platform mobile applications",
				"Responsive: Mobile-optimized web interface"),
			pick(sig.payments,
				"Payments: Stripe integration for secure payment processing",
				"Authentication: JWT + bcrypt for secure user management"),
			"Hosting: Vercel (frontend) + Railway (backend) for reliable, scalable deployment",
			"Additional: Real-time features, automated testing, and comprehensive monitoring",
		}},
		{Title: SlideRevenue, Content: []string{
			pricing,
			pick(sig.marketplace,
				"Listing fees: Premium placement and featured listings for service providers",
				"Premium features: Advanced analytics, integrations, and customization options"),
			pick(sig.b2b,
				"Enterprise licensing: Custom solutions and white-label options for large organizations",
				"In-app purchases: Additional storage, templates, or specialized tools"),
			"Partnership revenue: Integration partnerships and affiliate marketing programs",
			fmt.Sprintf("Projected revenue: %s with 25-30%% monthly growth",
				pick(sig.payments, "$100K ARR by month 12", "$50K ARR by month 18")),
			"Long-term: API licensing, marketplace expansion, and acquisition opportunities",
		}},
		{Title: SlideMVP, Content: []string{
			"Phase 1 (Weeks 1-2): Core infrastructure, user authentication, and basic UI",
			"Phase 2 (Weeks 3-6): Primary features, database integration, and core workflows",
			"Phase 3 (Weeks 7-10): Advanced features, payment integration, and mobile optimization",
			"Phase 4 (Weeks 11-12): Testing, security audit, and deployment preparation",
			"Beta launch: Limited user testing with 50-100 early adopters",
			"Public launch: Full feature set with marketing campaign and user acquisition",
			"Post-launch: Continuous improvement based on user feedback and analytics",
		}},
		{Title: SlideNextSteps, Content: []string{
			"You have a comprehensive development plan and pitch deck ready to go",
			"Your idea has been validated with market analysis and technical feasibility",
			"Complete tech stack recommendations ensure you're using proven technologies",
			"Revenue model and target audience provide clear business direction",
			"Development timeline gives you realistic milestones and expectations",
			"Next steps: Start with Phase 1, build your MVP, and validate with real users",
			"Transform your idea into reality - the foundation is already laid out for you!",
		}},
	}
}
