package wirecodec

// EachElement decodes a sequence, calling fn for every element. Errors carry
// the element index.
func EachElement(d Decoder, fn func(i int, e Decoder) error) error {
	c, err := d.DecodeSeq()
	if err != nil {
		return err
	}
	for i := 0; ; i++ {
		e, ok, err := c.Next()
		if err != nil {
			return AtIndex(err, i)
		}
		if !ok {
			return nil
		}
		if err := fn(i, e); err != nil {
			return AtIndex(err, i)
		}
	}
}

// EachEntry decodes an untyped map, calling fn for every entry. The key is
// handed over before the value is reached, so fn reads k first and then
// calls value. A value fn never asks for is skipped.
func EachEntry(d Decoder, fn func(k Decoder, value func() (Decoder, error)) error) error {
	c, err := d.DecodeMap()
	if err != nil {
		return err
	}
	for {
		k, ok, err := c.NextKey()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(k, c.NextValue); err != nil {
			return err
		}
	}
}
