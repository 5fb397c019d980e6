package catalog

import "github.com/kadro/pricing-estimator/internal/models"

func DefaultRoles() []models.Role {
	return []models.Role{
		{ID: 1, Name: "Developer", DefaultRate: 85},
		{ID: 2, Name: "Front End Developer", DefaultRate: 80},
		{ID: 3, Name: "Project Manager", DefaultRate: 95},
		{ID: 4, Name: "Designer", DefaultRate: 75},
		{ID: 5, Name: "QA Lead", DefaultRate: 70},
		{ID: 6, Name: "Tech Lead", DefaultRate: 110},
		{ID: 7, Name: "BSA", DefaultRate: 90},
		{ID: 8, Name: "Executive", DefaultRate: 150},
	}
}

// DefaultTemplates returns the Shopify, BigCommerce and Adobe Commerce task
// lists. Role ids refer to DefaultRoles.
func DefaultTemplates() []models.Template {
	return []models.Template{
		{
			ID:       1,
			Name:     "Shopify",
			Platform: "Shopify",
			Tasks: []models.TaskDef{
				{ID: 1, Description: "Project Kickoff & Discovery", EstimateDays: 2, RoleID: 3},
				{ID: 2, Description: "Technical Architecture", EstimateDays: 3, RoleID: 6},
				{ID: 3, Description: "Theme Setup & Configuration", EstimateDays: 5, RoleID: 1},
				{ID: 4, Description: "Custom Theme Development", EstimateDays: 10, RoleID: 2},
				{ID: 5, Description: "Product Data Migration", EstimateDays: 3, RoleID: 7},
				{ID: 6, Description: "Third-Party Integrations", EstimateDays: 5, RoleID: 1},
				{ID: 7, Description: "QA Testing", EstimateDays: 4, RoleID: 5},
				{ID: 8, Description: "User Acceptance Testing", EstimateDays: 2, RoleID: 3},
				{ID: 9, Description: "Launch & Deployment", EstimateDays: 1, RoleID: 6},
			},
		},
		{
			ID:       2,
			Name:     "BigCommerce",
			Platform: "BigCommerce",
			Tasks: []models.TaskDef{
				{ID: 1, Description: "Project Kickoff & Discovery", EstimateDays: 2, RoleID: 3},
				{ID: 2, Description: "Technical Architecture", EstimateDays: 3, RoleID: 6},
				{ID: 3, Description: "Stencil Theme Development", EstimateDays: 12, RoleID: 2},
				{ID: 4, Description: "Product Catalog Setup", EstimateDays: 4, RoleID: 7},
				{ID: 5, Description: "Payment Gateway Integration", EstimateDays: 3, RoleID: 1},
				{ID: 6, Description: "Shipping Configuration", EstimateDays: 2, RoleID: 1},
				{ID: 7, Description: "QA Testing", EstimateDays: 5, RoleID: 5},
				{ID: 8, Description: "User Acceptance Testing", EstimateDays: 2, RoleID: 3},
				{ID: 9, Description: "Launch & Deployment", EstimateDays: 1, RoleID: 6},
			},
		},
		{
			ID:       3,
			Name:     "Adobe Commerce",
			Platform: "Adobe Commerce",
			Tasks: []models.TaskDef{
				{ID: 1, Description: "Project Kickoff & Discovery", EstimateDays: 3, RoleID: 3},
				{ID: 2, Description: "Technical Architecture & Planning", EstimateDays: 5, RoleID: 6},
				{ID: 3, Description: "Infrastructure Setup", EstimateDays: 3, RoleID: 1},
				{ID: 4, Description: "Custom Module Development", EstimateDays: 15, RoleID: 1},
				{ID: 5, Description: "Frontend Theme Development", EstimateDays: 12, RoleID: 2},
				{ID: 6, Description: "Data Migration", EstimateDays: 8, RoleID: 7},
				{ID: 7, Description: "Third-Party Integrations", EstimateDays: 7, RoleID: 1},
				{ID: 8, Description: "Performance Optimization", EstimateDays: 4, RoleID: 6},
				{ID: 9, Description: "QA Testing", EstimateDays: 6, RoleID: 5},
				{ID: 10, Description: "User Acceptance Testing", EstimateDays: 3, RoleID: 3},
				{ID: 11, Description: "Launch & Deployment", EstimateDays: 2, RoleID: 6},
			},
		},
	}
}
