package lateinit_test

import (
	"fmt"

	"github.com/roach88/lateinit"
)

type Server struct {
	addr lateinit.Slot[string] `lateinit:"addr"`
}

var serverAddr = lateinit.ReadonlyLateInit[string]("addr")

func (s *Server) Addr() (string, error)  { return serverAddr.Get(&s.addr) }
func (s *Server) SetAddr(a string) error { return serverAddr.Set(&s.addr, a) }

func Example() {
	s := &Server{}

	_, err := s.Addr()
	fmt.Println(err)
	fmt.Println(lateinit.IsInitialized(s, "addr"))

	_ = s.SetAddr(":8080")
	addr, _ := s.Addr()
	fmt.Println(addr)

	err = s.SetAddr(":9090")
	fmt.Println(lateinit.IsAlreadyInitialized(err))

	// Output:
	// lateinit: the property addr was not set
	// false
	// :8080
	// true
}

func ExampleOptions() {
	p := lateinit.LateInit[string]("p", lateinit.Options{IgnoreInitialUndefined: true})
	var slot lateinit.Slot[string]

	_ = p.SetUndefined(&slot)
	fmt.Println(slot.IsInitialized())

	_ = p.Set(&slot, "x")
	v, _ := p.Get(&slot)
	fmt.Println(v)

	// Output:
	// false
	// x
}
