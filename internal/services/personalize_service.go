package services

import (
	"context"
	"strings"

	"github.com/assadsharif/chatkit-widget-implementation/internal/logging"
	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
)

// Recommendations is the personalization payload returned to clients.
type Recommendations struct {
	Recommendations     []string               `json:"recommendations"`
	PersonalizedContent map[string]interface{} `json:"personalized_content"`
}

// PersonalizeService generates content recommendations. Rule-based
// stand-in; a real ranking model stays an external collaborator.
type PersonalizeService struct {
	pool []string
	log  logging.Logger
}

func NewPersonalizeService(log logging.Logger) *PersonalizeService {
	return &PersonalizeService{
		pool: []string{
			"Chapter 1: Introduction to Physical AI",
			"Chapter 2: Embodied Intelligence Fundamentals",
			"Chapter 3: Humanoid Robotics Overview",
			"Chapter 4: Perception Systems for Robots",
			"Chapter 5: Action and Control Mechanisms",
			"Chapter 6: Learning Algorithms for Robotics",
			"Chapter 7: Future Trends in Physical AI",
			"Tutorial: Building Your First Humanoid",
			"Video: Understanding Sensor Fusion",
			"Video: Deep Reinforcement Learning for Robots",
			"Interactive Demo: Robot Arm Kinematics",
			"Case Study: Boston Dynamics Spot Robot",
		},
		log: log,
	}
}

func (s *PersonalizeService) GetRecommendations(
	ctx context.Context,
	user *models.User,
	preferences map[string]interface{},
	chatHistory []models.ChatMessage,
) *Recommendations {
	var recommendations []string

	switch user.Tier {
	case models.TierPremium:
		recommendations = append(recommendations, s.pool[:7]...)
	case models.TierFull:
		recommendations = append(recommendations, s.pool[:5]...)
	default:
		recommendations = append(recommendations, s.pool[:3]...)
	}

	keywords := extractKeywords(chatHistory)
	if keywords["sensor"] || keywords["perception"] {
		recommendations = append([]string{"Video: Understanding Sensor Fusion"}, recommendations...)
	}
	if keywords["learning"] {
		recommendations = append([]string{"Video: Deep Reinforcement Learning for Robots"}, recommendations...)
	}

	difficulty := "intermediate"
	if preferences != nil {
		if d, ok := preferences["difficulty_level"].(string); ok && d != "" {
			difficulty = d
		}
	}
	switch difficulty {
	case "beginner":
		recommendations = append([]string{"Tutorial: Building Your First Humanoid"}, recommendations...)
	case "advanced":
		recommendations = append([]string{"Case Study: Boston Dynamics Spot Robot"}, recommendations...)
	}

	recommendations = dedupe(recommendations)
	if len(recommendations) > 5 {
		recommendations = recommendations[:5]
	}

	s.log.Info(ctx, "personalization_generated",
		"user_id", user.ID,
		"tier", user.Tier,
		"recommendations", len(recommendations),
	)

	return &Recommendations{
		Recommendations: recommendations,
		PersonalizedContent: map[string]interface{}{
			"difficulty_level":   difficulty,
			"learning_path":      []string{"basics", "sensors", "control", "advanced"},
			"next_chapter":       "perception-action-loops",
			"estimated_progress": "35%",
			"recommended_topics": []string{"sensor fusion", "deep RL", "kinematics"},
		},
	}
}

func extractKeywords(history []models.ChatMessage) map[string]bool {
	keywords := make(map[string]bool)
	for _, msg := range history {
		content := strings.ToLower(msg.Content)
		if strings.Contains(content, "sensor") {
			keywords["sensor"] = true
		}
		if strings.Contains(content, "perception") {
			keywords["perception"] = true
		}
		if strings.Contains(content, "learning") || strings.Contains(content, "train") {
			keywords["learning"] = true
		}
		if strings.Contains(content, "control") {
			keywords["control"] = true
		}
	}
	return keywords
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
