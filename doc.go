// Package lateinit guards late-initialized properties: values declared when a
// type is defined but assigned only after construction.
//
// A property is guarded by an Accessor, installed once per (type, property)
// pair, and a Slot embedded in every instance. The accessor mediates every
// read and write of the slot:
//
//   - reading an unset slot fails with *NotInitializedError
//   - writing commits the value and marks the slot set
//   - in Readonly mode a second commit fails with *AlreadyInitializedError
//     and leaves the first value in place
//
// # Usage
//
//	type Conn struct {
//	    addr lateinit.Slot[string] `lateinit:"addr"`
//	}
//
//	var connAddr = lateinit.ReadonlyLateInit[string]("addr")
//
//	func (c *Conn) Addr() (string, error)   { return connAddr.Get(&c.addr) }
//	func (c *Conn) SetAddr(a string) error  { return connAddr.Set(&c.addr, a) }
//
//	lateinit.IsInitialized(conn, "addr") // false until SetAddr succeeds
//
// # Undefined values
//
// SetUndefined commits an explicit "no value". The slot becomes set and reads
// return the zero value of T; Lookup reports defined=false. With
// Options.IgnoreInitialUndefined the very first write attempt is dropped when
// it is undefined, so generic instantiation code that assigns undefined before
// anything else does not count as initialization. Any later attempt, including
// a second undefined, commits normally.
//
// # Dynamic classes
//
// Class and Instance provide the same contract for properties that are only
// known at run time. Each Instance owns a map from property name to slot.
//
// # Concurrency
//
// Accessors and classes are immutable after installation and may be shared.
// Slots are not synchronized: concurrent reads and writes of the same slot
// must be serialized by the caller.
package lateinit
