package cli

import (
	"bytes"
	"testing"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "ROUTER", "OPERATION", "TARGET")
	tbl.Row("SIN1", "ethernet.disable", "eth1")
	tbl.Row("SIN2", "bgp.enable", "23.181.64.4")
	tbl.Flush()

	want := "ROUTER  OPERATION         TARGET\n" +
		"------  ---------         ------\n" +
		"SIN1    ethernet.disable  eth1\n" +
		"SIN2    bgp.enable        23.181.64.4\n"
	if buf.String() != want {
		t.Errorf("table =\n%s\nwant\n%s", buf.String(), want)
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf, "KEY", "ENTRY").Flush()
	if buf.Len() != 0 {
		t.Errorf("empty table printed %q", buf.String())
	}

	buf.Reset()
	NewTable(&buf, "KEY", "ENTRY").WithEmpty("No entries found").Flush()
	if buf.String() != "No entries found\n" {
		t.Errorf("empty table printed %q", buf.String())
	}
}

func TestTableColoredCells(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "STATUS", "TARGET")
	tbl.Row("\x1b[31mfailed\x1b[0m", "eth1")
	tbl.Row("ok", "eth2")
	tbl.Flush()

	want := "STATUS  TARGET\n" +
		"------  ------\n" +
		"\x1b[31mfailed\x1b[0m  eth1\n" +
		"ok      eth2\n"
	if buf.String() != want {
		t.Errorf("table = %q, want %q", buf.String(), want)
	}
}

func TestTableShortRow(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "KEY", "ENTRY")
	tbl.Row("bgp_disabled")
	tbl.Flush()

	want := "KEY           ENTRY\n" +
		"---           -----\n" +
		"bgp_disabled\n"
	if buf.String() != want {
		t.Errorf("table = %q, want %q", buf.String(), want)
	}
}
