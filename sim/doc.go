// Package sim provides the core daily business simulation engine.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - world.go: the static world configuration (products, regions, channels, unit economics)
//   - stock.go: StockState, the only state carried across day boundaries
//   - day.go: SimulateDay, the per-day pipeline (demand -> production -> sales -> marketing -> CAC)
//
// # Architecture
//
// A simulated day is a pure function of (date, world, prior stock state,
// seeded RNG): it returns that day's sales, marketing, and inventory rows
// plus the updated stock state. Days must run in strictly increasing date
// order because day t's closing stock is day t+1's opening stock; nothing
// else crosses the day boundary.
//
// All randomness flows through a PartitionedRNG (rng.go) so that two runs
// with the same SimulationKey and identical prior state produce identical
// output tables.
//
// The sim package does no file or network I/O. Persistence lives in the
// store package and the HTTP surface in the api package.
package sim
