// Package dataprocessing turns a raw listings export into the canonical
// listings table and derives everything the views show from it.
//
// # Loading
//
// Load reads a CSV or Excel source exactly once. Cleaning coerces currency
// strings to numbers, parses review dates, fills review counts with 0 and
// categorical gaps with "Unknown", drops columns outside the schema, removes
// exact duplicate rows and trims minimum nights to [1, p99].
//
//	table, report, err := dataprocessing.Load("listings.csv", dataprocessing.LoadOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Views
//
// A Table never changes after Load. Apply derives a new table from a
// domain.Criteria, and the aggregation helpers (GroupMean, GroupSum,
// ValueCounts, TopN, Histogram, AvailabilityBands, Summarize, Range) work on
// any table:
//
//	brooklyn := dataprocessing.Apply(table, domain.Criteria{NeighbourhoodGroup: "Brooklyn"})
//	top := dataprocessing.TopN(dataprocessing.GroupMean(table, dataprocessing.ByNeighbourhood, dataprocessing.MeasurePrice), 5)
//
// Recommend matches a budget and stay length against one neighbourhood.
package dataprocessing
