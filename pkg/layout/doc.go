// Package layout positions topology snapshots and keeps positions stable
// across successive snapshots.
//
// [Do] is the entry point. Given the nodes and edges of the current snapshot
// and the [Cache] returned by the previous call, it picks one of three
// strategies:
//
//   - [StrategyCached]: every node has been seen before, so all coordinates
//     come from the cache. Label and metric updates never move anything.
//   - [StrategyInsert]: new nodes share a rank with nodes already on screen;
//     they are slotted in next to them and the rest stays put.
//   - [StrategyFull]: anything else. Connected nodes go through a
//     [layered.Engine], degree-0 nodes are packed into a grid beside or below
//     them, and the result is centred on the canvas.
//
// Only geometry is ever read from the cache: x and y for nodes, points for
// edges. Every other field comes from the current snapshot.
//
// The cache is a value. Do never modifies the cache it is given and returns
// a new one in [Result.Cache]; the caller decides what to keep. Entries are
// never evicted, so a node that disappears and comes back recovers its old
// position.
//
// Snapshots above [Options.MaxNodes] are not laid out at all: the result has
// TooManyNodes set and no coordinates, and no error is returned.
package layout
