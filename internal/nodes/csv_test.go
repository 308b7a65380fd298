package nodes

import (
	"errors"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	in := `stream_id,node_id,stream_km,x,y
jc,1,0.05,1000.5,2000.5
jc,2,0.10,1010.5,2010.5
ws,1,0.05,5000,6000
`
	ns, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(ns) != 3 {
		t.Fatalf("got %d nodes, want 3", len(ns))
	}
	if ns[0].StreamID != "jc" || ns[0].NodeID != 1 || ns[0].StreamKM != 0.05 || ns[0].X != 1000.5 {
		t.Errorf("first node = %+v", ns[0])
	}
	if ns[2].StreamID != "ws" {
		t.Errorf("third node = %+v", ns[2])
	}
}

func TestReadEmpty(t *testing.T) {
	if _, err := Read(strings.NewReader("stream_id,node_id,stream_km,x,y\n")); !errors.Is(err, ErrNoNodes) {
		t.Errorf("err = %v, want ErrNoNodes", err)
	}
	if _, err := Read(strings.NewReader("")); !errors.Is(err, ErrNoNodes) {
		t.Errorf("empty file err = %v, want ErrNoNodes", err)
	}
}

func TestReadBadHeader(t *testing.T) {
	if _, err := Read(strings.NewReader("id,node,km,x,y\n1,1,0,0,0\n")); err == nil {
		t.Error("expected header error")
	}
}

func TestReadBadRecord(t *testing.T) {
	bad := []string{
		"stream_id,node_id,stream_km,x,y\njc,one,0,0,0\n",
		"stream_id,node_id,stream_km,x,y\njc,1,far,0,0\n",
		"stream_id,node_id,stream_km,x,y\n,1,0,0,0\n",
	}
	for i, in := range bad {
		if _, err := Read(strings.NewReader(in)); err == nil {
			t.Errorf("bad[%d]: expected error", i)
		}
	}
}
