// Package generator synthesizes a starter development plan and pitch deck
// from a free-text idea. It is deterministic and works offline: keywords in
// the idea switch optional tech stack entries and wording on or off.
package generator

import (
	"strings"

	"github.com/dmitrijs2005/ideaforge/internal/models"
)

type signals struct {
	mobile      bool
	payments    bool
	auth        bool
	realtime    bool
	marketplace bool
	b2b         bool
	social      bool
	booking     bool
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func detect(idea string) signals {
	s := strings.ToLower(idea)
	return signals{
		mobile:      containsAny(s, "mobile", "app", "ios", "android"),
		payments:    containsAny(s, "payment", "subscription", "billing", "buy", "sell"),
		auth:        containsAny(s, "user", "account", "login", "profile"),
		realtime:    containsAny(s, "chat", "live", "real-time", "notification"),
		marketplace: containsAny(s, "marketplace", "platform"),
		b2b:         containsAny(s, "business", "company", "enterprise"),
		social:      containsAny(s, "social", "community", "share"),
		booking:     containsAny(s, "book", "schedule", "appointment"),
	}
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

// GeneratePlan returns the tech stack, roadmap, project structure and
// deployment advice for idea, together with its pitch deck. Description is
// the idea itself.
func GeneratePlan(idea string) models.Content {
	sig := detect(idea)
	return models.Content{
		Description: idea,
		TechStack:   techStack(sig),
		Roadmap:     roadmap(sig),
		Structure:   append([]string(nil), projectStructure...),
		Deployment:  append([]string(nil), deployment...),
		PitchDeck:   GeneratePitchDeck(idea),
	}
}

func techStack(sig signals) []models.TechStackItem {
	stack := []models.TechStackItem{
		{Name: "React + TypeScript", Description: "Modern frontend framework with type safety", Category: "Frontend"},
		{Name: "Node.js + Express", Description: "Fast and scalable backend API server", Category: "Backend"},
		{Name: "PostgreSQL", Description: "Reliable relational database for data storage", Category: "Database"},
	}
	if sig.mobile {
		stack = append(stack, models.TechStackItem{Name: "React Native", Description: "Cross-platform mobile app development", Category: "Mobile"})
	}
	if sig.payments {
		stack = append(stack, models.TechStackItem{Name: "Stripe", Description: "Secure payment processing and billing", Category: "Payments"})
	}
	if sig.auth {
		stack = append(stack, models.TechStackItem{Name: "JWT + bcrypt", Description: "Secure user authentication and authorization", Category: "Authentication"})
	}
	if sig.realtime {
		stack = append(stack, models.TechStackItem{Name: "Socket.io", Description: "Real-time bidirectional communication", Category: "Real-time"})
	}
	return append(stack, models.TechStackItem{Name: "Vercel + Railway", Description: "Frontend and backend hosting with CI/CD", Category: "Hosting"})
}

func roadmap(sig signals) []models.RoadmapPhase {
	return []models.RoadmapPhase{
		{
			Phase:    "Phase 1: Foundation & Setup",
			Duration: "1-2 weeks",
			Tasks: []string{
				"Set up development environment",
				"Initialize Git repository",
				"Create basic project structure",
				"Set up database schema",
				"Implement basic authentication",
				"Create landing page",
			},
			Milestone: "MVP Foundation",
		},
		{
			Phase:    "Phase 2: Core Features",
			Duration: "3-4 weeks",
			Tasks: []string{
				"Build main user interface",
				"Implement core functionality",
				"Add user dashboard",
				"Create API endpoints",
				"Set up data validation",
				"Add error handling",
			},
			Milestone: "Core MVP",
		},
		{
			Phase:    "Phase 3: Enhancement",
			Duration: "2-3 weeks",
			Tasks: []string{
				pick(sig.payments, "Integrate payment system", "Add advanced features"),
				"Implement search and filtering",
				"Add notifications system",
				"Create admin panel",
				"Optimize performance",
				"Add analytics tracking",
			},
			Milestone: "Enhanced Product",
		},
		{
			Phase:    "Phase 4: Launch Preparation",
			Duration: "1-2 weeks",
			Tasks: []string{
				"Comprehensive testing",
				"Set up monitoring",
				"Create deployment pipeline",
				"Add security measures",
				"Documentation and guides",
				"Beta testing and feedback",
			},
			Milestone: "Production Ready",
		},
	}
}

var projectStructure = []string{
	"project-root/",
	"├── frontend/",
	"│   ├── src/",
	"│   │   ├── components/",
	"│   │   ├── pages/",
	"│   │   ├── hooks/",
	"│   │   ├── utils/",
	"│   │   └── types/",
	"│   ├── public/",
	"│   └── package.json",
	"├── backend/",
	"│   ├── src/",
	"│   │   ├── routes/",
	"│   │   ├── models/",
	"│   │   ├── middleware/",
	"│   │   ├── controllers/",
	"│   │   └── utils/",
	"│   ├── tests/",
	"│   └── package.json",
	"├── database/",
	"│   ├── migrations/",
	"│   └── seeds/",
	"├── docs/",
	"├── .github/workflows/",
	"├── docker-compose.yml",
	"└── README.md",
}

var deployment = []string{
	"Frontend: Deploy to Vercel for automatic deployments from Git with global CDN",
	"Backend: Use Railway or Heroku for easy Node.js hosting with automatic scaling",
	"Database: PostgreSQL on Railway, Supabase, or AWS RDS for production reliability",
	"File Storage: AWS S3 or Cloudinary for images and static assets",
	"Monitoring: Set up error tracking with Sentry and analytics with Google Analytics",
	"CI/CD: GitHub Actions for automated testing and deployment pipeline",
}
