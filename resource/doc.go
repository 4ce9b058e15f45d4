// Package resource provides a handle table for host-side objects whose
// lifetime is bounded by something else.
//
// The host uses it to track every delegate issued under a live runtime
// handle. When the runtime shuts down the table is cleared, each entry's
// Drop method runs and the delegate stops accepting calls.
//
//	table := resource.NewTable[*entry]()
//
//	// Insert a value, get a handle
//	h := table.Insert(e)
//
//	// Retrieve value by handle
//	e, ok := table.Get(h)
//
//	// Remove; e.Drop() is called if e implements Dropper
//	e, ok = table.Remove(h)
//
// # Observers
//
// Register observers to track lifecycle events:
//
//	table.Subscribe(resource.ObserverFunc(func(ev resource.Event) {
//	    log.Printf("entry %d %s", ev.Handle, ev.Type)
//	}))
//
// Handle 0 is never issued. Handles of removed entries are reused.
package resource
