// Package domain models the HPSC (Health Protection Surveillance Centre)
// COVID-19 open data for Ireland and the chart queries built on it.
//
// # Data Sources
//
// Two CSV tables are published on the Ireland geohive open-data hub and
// mirrored on data.gov.ie:
//
//   - County table (Covid19CountyStatisticsHPSCIreland): one row per county
//     per day with cumulative confirmed cases and the 2016 census population.
//   - National table (CovidStatisticsProfileHPSCIrelandOpenData): one row per
//     day with national totals and demographic breakdowns.
//
// Both tables are parsed by column name, so extra or reordered columns are
// tolerated. Only the columns in [countyColumns] and [nationalColumns] are
// required.
//
// # Data Conventions
//
// Date format:
//
//	"YYYY/MM/DD HH:MM:SS+00"  →  e.g. "2020/03/21 00:00:00+00"
//	County rows carry it in TimeStamp, national rows in Date.
//
// Missing values:
//
//	Empty cells are common in the breakdown columns, particularly early in
//	the series. Every numeric cell is held as a [Number] so a missing value
//	propagates to the chart instead of failing the load.
//
// Population:
//
//	PopulationCensus16 is used as a divisor and must be positive. A table
//	containing a non-positive population is rejected at parse time.
//
// Transmission breakdown:
//
//	CommunityTransmission, CloseContact and TravelAbroad are percentages of
//	cases with a known mode of transmission, not counts.
//
// # Estimated Active Cases
//
// A case is assumed resolved [ActiveWindow] days after confirmation:
//
//	active[i] = total[i]                 for i < 14
//	active[i] = total[i] - total[i-14]   for i ≥ 14
//
// The column is derived once per [Dataset] by [EstimateActiveCases].
//
// # Date Selection
//
// Chart queries select rows by date. The default [MatchSubstring] mode tests
// whether the raw date string contains "YYYY/MM/DD" (county table) or
// "MM/DD" (national table). The national pattern ignores the year, so a
// multi-year table can match several rows; the last match by row order wins.
// [MatchExact] parses the date and compares calendar days instead.
package domain
