// Package services implements the views of the listings insights service.
//
// ListingService computes every view from the shared, immutable listings
// table: the dashboard, the listings overview, detailed insights, the
// comparative analysis, recommendations and the selectable options. Each call
// filters its own derived table, so concurrent callers never share state.
//
// Session holds the private selections of one interactive user and applies
// the neighbourhood cascade when the neighbourhood group changes.
//
// # Common Service Pattern
//
//	svc, err := services.NewListingService(services.ListingServiceConfig{
//		Table:      table,
//		Thresholds: cfg.Thresholds,
//		Metrics:    metrics,
//		Logger:     logger,
//	})
//	view, err := svc.Insights(ctx, criteria)
package services
