/*
Package record provides the typed-record serialization contract shared by
every configuration entity in hutch.

Each entity type declares a Schema: a static table of Field entries, one per
wire key. A field knows how to encode its attribute (and whether it is set),
how to decode a wire value into it, and optionally what default to apply when
the key is missing. No reflection is used to discover fields; the table is
the contract.

# Wire Form

	┌──────────── struct ────────────┐        ┌──────── map[string]any ───────┐
	│ Name      "node1"              │ ToDict │ "name": "node1"                │
	│ Offline   false      (unset)   │ ─────► │                                │
	│ Ports     nil        (absent)  │        │ "tcpudp_port_pool": []         │
	│ Extra     {"x": 1}             │ ◄───── │ "x": 1                         │
	└────────────────────────────────┘FromDict└────────────────────────────────┘

ToDict only emits set attributes. FromDict leaves unlisted attributes at
their zero value or declared default. For every settable attribute
FromDict(ToDict(x)) is observationally equal to x.

# Set Fields

IntSet fields keep "absent" (nil) and "empty" apart in memory but not on the
wire: nil encodes to an empty sequence, and both an empty sequence and a
missing key decode to an empty, non-nil set. One round trip reaches a fixed
point.

# Unknown Keys

Unknown keys are dropped unless the schema declares an extras bag with
WithExtras, in which case they are kept verbatim and emitted again by ToDict.

# Decoding

Scalars are coerced leniently with spf13/cast ("3" decodes into an int field).
A value that cannot be coerced fails with a *DecodeError naming the record and
field.

# Usage

	var widgetSchema = record.NewSchema("widget",
		record.String("name", func(w *Widget) *string { return &w.Name }),
		record.Set("ports", func(w *Widget) *record.IntSet { return &w.Ports }),
	)

	w, err := widgetSchema.FromDict(raw)
	if err != nil {
		return fmt.Errorf("failed to load widget: %w", err)
	}
	out := widgetSchema.ToDict(w)
*/
package record
