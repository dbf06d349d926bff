package sitecontent

import "fmt"

// Field names the part of a block Update replaces.
type Field string

// Field constants (typed).
const (
	FieldData    Field = "data"
	FieldSubType Field = "subType"
)

func setItemOrder(it *Item, i int) { it.Order = i }

func cloneList(l List) List { return l.Clone() }

// Add appends a new empty block of type t. Specification and video blocks
// take an optional subtype; without one they start with the type's default.
func (l List) Add(t BlockType, sub ...SubType) (List, error) {
	if !t.IsValid() {
		return nil, invariant("add", "unknown block type %q", t)
	}
	st := t.DefaultSubType()
	if len(sub) > 0 && sub[0] != SubTypeNone {
		st = sub[0]
	}
	if !t.AllowsSubType(st) {
		return nil, invariant("add", "sub type %q not allowed for %s", st, t)
	}
	data, err := DefaultPayload(t, st)
	if err != nil {
		return nil, err
	}
	it := Item{Type: t, SubType: st, Data: data}
	it.ensureKey()
	return appendOrdered(l, it, cloneList, setItemOrder), nil
}

// Update replaces field f of the block at index with v.
//
// For FieldData, v must be a Payload of the shape the block's type and
// subtype carry. For FieldSubType, v must be a SubType allowed for the block;
// changing it resets the payload to the new subtype's default. Order is left
// alone.
func (l List) Update(index int, f Field, v any) (List, error) {
	if err := checkIndex("update", index, len(l)); err != nil {
		return nil, err
	}
	out := l.Clone()
	it := &out[index]
	switch f {
	case FieldData:
		p, ok := v.(Payload)
		if !ok || !payloadFits(it.Type, it.SubType, p) {
			return nil, invariant("update", "%T is not a valid payload for %s", v, describe(*it))
		}
		if m, ok := p.(Manual); ok {
			m.File = MediaRef(m.File.Name())
			p = m
		}
		it.Data = clonePayload(p)
	case FieldSubType:
		sub, ok := v.(SubType)
		if !ok || !it.Type.AllowsSubType(sub) {
			return nil, invariant("update", "sub type %v not allowed for %s", v, it.Type)
		}
		if sub != it.SubType {
			data, err := DefaultPayload(it.Type, sub)
			if err != nil {
				return nil, err
			}
			it.SubType = sub
			it.Data = data
		}
	default:
		return nil, invariant("update", "unknown field %q", f)
	}
	return out, nil
}

// SetData is Update(index, FieldData, p).
func (l List) SetData(index int, p Payload) (List, error) {
	return l.Update(index, FieldData, p)
}

// SetSubType is Update(index, FieldSubType, sub).
func (l List) SetSubType(index int, sub SubType) (List, error) {
	return l.Update(index, FieldSubType, sub)
}

// Remove deletes the block at index and renumbers the blocks after it.
func (l List) Remove(index int) (List, error) {
	return removeOrdered("remove", l, index, cloneList, setItemOrder)
}

// Move swaps the block at index with its neighbour in direction dir. Moving
// the first block up or the last block down leaves the list unchanged.
func (l List) Move(index int, dir Direction) (List, error) {
	return moveOrdered("move", l, index, dir, cloneList, setItemOrder)
}

// AddColumn appends an empty column to the table at index.
func (l List) AddColumn(index int) (List, error) {
	return l.editTable("add column", index, func(t Table) (Table, error) {
		return t.WithColumn(), nil
	})
}

// RemoveColumn drops the last column of the table at index.
func (l List) RemoveColumn(index int) (List, error) {
	return l.editTable("remove column", index, Table.WithoutColumn)
}

// AddRow appends an empty row to the table at index.
func (l List) AddRow(index int) (List, error) {
	return l.editTable("add row", index, func(t Table) (Table, error) {
		return t.WithRow(), nil
	})
}

// RemoveRow drops the last row of the table at index.
func (l List) RemoveRow(index int) (List, error) {
	return l.editTable("remove row", index, func(t Table) (Table, error) {
		return t.WithoutRow(t.Len() - 1)
	})
}

// RemoveRowAt drops row r of the table at index.
func (l List) RemoveRowAt(index, r int) (List, error) {
	return l.editTable("remove row", index, func(t Table) (Table, error) {
		return t.WithoutRow(r)
	})
}

// SetHeader replaces the header of column c in the table at index.
func (l List) SetHeader(index, c int, value string) (List, error) {
	return l.editTable("set header", index, func(t Table) (Table, error) {
		return t.WithHeader(c, value)
	})
}

// SetCell replaces one cell of the table at index.
func (l List) SetCell(index, r, c int, value string) (List, error) {
	return l.editTable("set cell", index, func(t Table) (Table, error) {
		return t.WithCell(r, c, value)
	})
}

func (l List) editTable(op string, index int, fn func(Table) (Table, error)) (List, error) {
	if err := checkIndex(op, index, len(l)); err != nil {
		return nil, err
	}
	t, ok := l[index].Data.(Table)
	if l[index].Type != BlockTable || !ok {
		return nil, invariant(op, "block %d is %s, not a table", index, l[index].Type)
	}
	next, err := fn(t)
	if err != nil {
		return nil, err
	}
	return l.Update(index, FieldData, next)
}

// RemoveImage drops image i from the multi-image block at index.
func (l List) RemoveImage(index, i int) (List, error) {
	if err := checkIndex("remove image", index, len(l)); err != nil {
		return nil, err
	}
	refs, ok := l[index].Data.(MediaRefs)
	if !ok {
		return nil, invariant("remove image", "block %d is %s, not a multi-image block", index, l[index].Type)
	}
	if err := checkIndex("remove image", i, len(refs)); err != nil {
		return nil, err
	}
	next := make(MediaRefs, 0, len(refs)-1)
	next = append(next, refs[:i]...)
	next = append(next, refs[i+1:]...)
	return l.Update(index, FieldData, next)
}

// indexOfKey returns the current position of the block with identity key, or -1.
func (l List) indexOfKey(key uint64) int {
	if key == 0 {
		return -1
	}
	for i := range l {
		if l[i].key == key {
			return i
		}
	}
	return -1
}

func describe(it Item) string {
	if it.SubType != SubTypeNone {
		return fmt.Sprintf("%s/%s", it.Type, it.SubType)
	}
	return string(it.Type)
}
