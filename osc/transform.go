package osc

// Transform rewrites one encoded packet.
type Transform func(data []byte) ([]byte, error)

// ApplyTransform runs msg on data when it holds a message and bundle when it
// holds a bundle. A nil bundle transform selects BundleTransform(msg), which
// applies msg to every message inside the bundle, however deeply nested.
// A nil msg leaves messages untouched.
func ApplyTransform(data []byte, msg, bundle Transform) ([]byte, error) {
	return applyTransform(data, msg, bundle, 0)
}

func applyTransform(data []byte, msg, bundle Transform, depth int) ([]byte, error) {
	if IsBundle(data) {
		if bundle == nil {
			bundle = bundleTransform(msg, depth)
		}
		return bundle(data)
	}
	if msg == nil {
		return append([]byte(nil), data...), nil
	}
	return msg(data)
}

// BundleTransform returns a Transform that applies msg to each element of a
// bundle and frames the results again. The bundle tag and the raw timetag
// bytes are copied through. Elements for which msg fails are left out.
func BundleTransform(msg Transform) Transform {
	return bundleTransform(msg, 0)
}

func bundleTransform(msg Transform, depth int) Transform {
	return func(data []byte) ([]byte, error) {
		if depth > MaxDepth {
			return nil, newError(KindTooDeep, "bundle nesting exceeds %d", MaxDepth)
		}

		tag, rest, err := SplitString(data, false)
		if err != nil || tag != bundleTagString {
			return nil, newError(KindNotABundle, "invalid bundle tag %q", tag)
		}
		if len(rest) < bit64Size {
			return nil, newError(KindTruncatedBundle, "timetag needs %d bytes, have %d", bit64Size, len(rest))
		}

		out := appendString(make([]byte, 0, len(data)), bundleTagString)
		out = append(out, rest[:bit64Size]...)

		err = eachElement(rest[bit64Size:], func(_ int, elem []byte) error {
			b, err := applyTransform(elem, msg, nil, depth+1)
			if err != nil {
				return err
			}
			out = appendUint32(out, uint32(len(b)))
			out = append(out, b...)
			return nil
		}, "transform")
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

// AddressTransform returns a Transform that rewrites the address of a
// message with fn. The bytes after the address are passed on unparsed.
func AddressTransform(fn func(address string) string) Transform {
	return func(data []byte) ([]byte, error) {
		addr, rest, err := SplitString(data, false)
		if err != nil {
			return nil, err
		}
		b, err := BuildString(fn(addr), false)
		if err != nil {
			return nil, err
		}
		return append(b, rest...), nil
	}
}

// MessageTransform returns a Transform that decodes a message, hands it to fn
// and encodes the result. Both steps are lenient.
func MessageTransform(fn func(msg *Message) (*Message, error)) Transform {
	return func(data []byte) ([]byte, error) {
		msg, err := DecodeMessage(data, false)
		if err != nil {
			return nil, err
		}
		msg, err = fn(msg)
		if err != nil {
			return nil, err
		}
		return EncodeMessage(msg, false)
	}
}

// ApplyAddressTransform rewrites every address in data with fn.
func ApplyAddressTransform(data []byte, fn func(address string) string) ([]byte, error) {
	return ApplyTransform(data, AddressTransform(fn), nil)
}

// ApplyMessageTransform rewrites every message in data with fn.
func ApplyMessageTransform(data []byte, fn func(msg *Message) (*Message, error)) ([]byte, error) {
	return ApplyTransform(data, MessageTransform(fn), nil)
}
