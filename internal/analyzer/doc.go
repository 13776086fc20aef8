// Package analyzer computes daily trade statistics from broker CSV
// exports.
//
// The broker writes one file per day named Trades_DD.MM.YYYY.csv, with
// an unpredictable encoding (UTF-8, UTF-8 BOM or CP1251) and separator
// (';', ',', tab, '|' or '/'). Loading tries each combination until
// the header splits into more than one column; a single-column file
// whose header contains '/' is split manually as a last resort.
//
// Reported figures: simple averages for every numeric column, VWAP
// (volume-weighted average price), the price-weighted average trade
// size, total volume and total turnover.
package analyzer
