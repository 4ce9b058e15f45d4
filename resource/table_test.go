package resource

import (
	"testing"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.events = append(o.events, e)
}

func TestTable_Basic(t *testing.T) {
	table := NewTable[string]()

	h := table.Insert("test")
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}

	val, ok := table.Get(h)
	if !ok {
		t.Fatal("Get failed")
	}
	if val != "test" {
		t.Fatalf("Expected 'test', got %v", val)
	}

	if _, ok := table.Get(0); ok {
		t.Fatal("Get(0) should fail")
	}
	if _, ok := table.Get(h + 1); ok {
		t.Fatal("Get of unissued handle should fail")
	}

	val, ok = table.Remove(h)
	if !ok {
		t.Fatal("Remove failed")
	}
	if val != "test" {
		t.Fatalf("Expected 'test', got %v", val)
	}

	if _, ok := table.Remove(h); ok {
		t.Fatal("second Remove should fail")
	}

	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Remove")
	}
}

func TestTable_HandleReuse(t *testing.T) {
	table := NewTable[int]()

	a := table.Insert(1)
	b := table.Insert(2)
	table.Remove(a)

	c := table.Insert(3)
	if c != a {
		t.Fatalf("Expected freed handle %d to be reused, got %d", a, c)
	}
	if v, _ := table.Get(b); v != 2 {
		t.Fatalf("Entry %d changed to %d", b, v)
	}
	if table.Len() != 2 {
		t.Fatalf("Expected Len() == 2, got %d", table.Len())
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable[string]()
	obs := &testObserver{}
	table.Subscribe(obs)

	h := table.Insert("test")
	if len(obs.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(obs.events))
	}
	if obs.events[0].Type != EventCreated {
		t.Fatal("Expected EventCreated")
	}
	if obs.events[0].Handle != h {
		t.Fatal("Wrong handle in event")
	}

	table.Remove(h)
	if len(obs.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(obs.events))
	}
	if obs.events[1].Type != EventDropped {
		t.Fatal("Expected EventDropped")
	}

	table.Unsubscribe(obs)
	table.Insert("test2")
	if len(obs.events) != 2 {
		t.Fatal("Should not receive events after Unsubscribe")
	}
}

func TestTable_ObserverFunc(t *testing.T) {
	table := NewTable[string]()
	var got []EventType
	table.Subscribe(ObserverFunc(func(e Event) { got = append(got, e.Type) }))

	table.Remove(table.Insert("x"))
	if len(got) != 2 || got[0] != EventCreated || got[1] != EventDropped {
		t.Fatalf("events = %v", got)
	}
}

func TestTable_Each(t *testing.T) {
	table := NewTable[string]()
	table.Insert("a")
	table.Insert("b")
	table.Insert("c")

	var seen []string
	table.Each(func(_ Handle, v string) bool {
		seen = append(seen, v)
		return len(seen) < 2
	})
	if len(seen) != 2 {
		t.Fatalf("Each should stop when fn returns false, saw %v", seen)
	}
}

func TestTable_Clear(t *testing.T) {
	table := NewTable[string]()

	table.Insert("a")
	table.Insert("b")
	table.Insert("c")

	if table.Len() != 3 {
		t.Fatal("Expected Len() == 3")
	}

	table.Clear()

	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Clear")
	}
}

func TestTable_Close(t *testing.T) {
	table := NewTable[*dropCounter]()
	d := &dropCounter{}

	table.Insert(d)
	table.Insert(&dropCounter{})

	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if d.count != 1 {
		t.Fatalf("Close should drop live entries, Drop called %d times", d.count)
	}

	h := table.Insert(&dropCounter{})
	if h != 0 {
		t.Fatal("Expected Insert to fail after Close")
	}
}

type dropCounter struct {
	count int
}

func (d *dropCounter) Drop() {
	d.count++
}

func TestTable_DropperInterface(t *testing.T) {
	table := NewTable[*dropCounter]()
	d := &dropCounter{}

	h := table.Insert(d)
	table.Remove(h)
	table.Remove(h)

	if d.count != 1 {
		t.Fatalf("Expected Drop() to be called once, called %d times", d.count)
	}
}
