// Package http implements the HTTP handlers of the listings insights service.
// Handlers stay thin: they parse and validate the request, call the service
// layer and render either a JSON envelope or an RFC 7807 problem document.
//
// # Routes
//
//	GET  /api/v1/listings/options          selectable values, cascaded by neighbourhood_group
//	GET  /api/v1/listings/dashboard        headline metrics of the full table
//	GET  /api/v1/listings/overview         availability bands for a location selection
//	GET  /api/v1/listings/insights         distributions of a filtered table
//	GET  /api/v1/listings/comparative      rankings by neighbourhood and room type
//	POST /api/v1/listings/recommendations  listings matching a budget and stay
//	GET  /api/v1/listings/export/{format}  filtered rows as csv or xlsx
//
// Filters are passed as query parameters: country, neighbourhood_group,
// neighbourhood, room_type, instant_bookable, cancellation_policy,
// min_nights and max_price. A missing parameter or the value All switches
// its criterion off.
//
// # Testing
//
// Handlers are tested with httptest against a testify mock of the service.
package http
