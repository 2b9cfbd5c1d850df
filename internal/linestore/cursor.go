package linestore

// Cursor reads a store line by line. It is not safe for concurrent use.
type Cursor struct {
	store *Store
	pos   int
}

// Seek positions the cursor on line n.
func (c *Cursor) Seek(n int) error {
	if n < 0 || n >= c.store.LineCount() {
		return ErrLineOutOfRange
	}
	c.pos = n
	return nil
}

// Pos returns the line under the cursor.
func (c *Cursor) Pos() int { return c.pos }

// Next returns the line under the cursor and moves down one line.
func (c *Cursor) Next() (int, []byte, bool) {
	text, err := c.store.Line(c.pos)
	if err != nil {
		return -1, nil, false
	}
	n := c.pos
	c.pos++
	return n, text, true
}

// Prev returns the line under the cursor and moves up one line.
func (c *Cursor) Prev() (int, []byte, bool) {
	text, err := c.store.Line(c.pos)
	if err != nil {
		return -1, nil, false
	}
	n := c.pos
	c.pos--
	return n, text, true
}
