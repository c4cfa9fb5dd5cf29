// Copyright 2013 - 2015 Sebastian Ruml <sebastian.ruml@gmail.com>

/*
Package osc encodes and decodes OpenSoundControl packets and rewrites encoded
packets in place.

The package is implemented in pure Go and follows the Open Sound Control 1.0
Specification (http://opensoundcontrol.org/spec-1_0), plus the SLIP stream
framing and array arguments of OSC 1.1.

The unit of transmission of OSC is an OSC Packet. An OSC packet consists of
its contents, a contiguous block of binary data, and its size, the number of
8-bit bytes that comprise the contents.

OSC packets come in two flavors:

OSC Messages: An OSC message consists of an OSC address pattern, followed
by an OSC Type Tag String, and finally by zero or more OSC arguments.

OSC Bundles: An OSC Bundle consists of the string "#bundle" followed
by an OSC Time Tag, followed by zero or more OSC bundle elements. Each bundle
element can be another OSC bundle (note this recursive definition: bundle may
contain bundles) or OSC message.

The following argument types are supported: 'i' (Int32), 'f' (Float32),
's' (string), 'b' (blob / binary data), 't' (OSC timetag), 'd' (Float64),
'T' (True), 'F' (False), 'N' (Nil), 'I' (Bang) and '[' ... ']' arrays.

Strict and lenient mode

Every codec function takes a strict flag. Well formed input behaves the same
either way. Lenient mode accepts missing terminators, bad padding, addresses
without a leading '/', missing type tag strings and unbalanced brackets, and
returns what it could read. Unknown type tags and bundles without the
"#bundle" tag always fail. A bundle element that fails to decode or encode is
dropped from its bundle in both modes.

Usage

Encoding a message:

    msg := osc.NewMessage("/osc/address")
    msg.Append(osc.Argument{Type: osc.TypeInt32, Value: 111})
    msg.Append(true)
    msg.Append("hello")
    data, err := osc.EncodeMessage(msg, true)

Decoding a packet:

    pkt, err := osc.DecodePacket(data, false)
    switch p := pkt.(type) {
    case *osc.Message:
        fmt.Println(p)
    case *osc.Bundle:
        fmt.Println(p.Timetag.Time())
    }

Rewriting every address in a packet, bundles included:

    out, err := osc.ApplyAddressTransform(data, func(addr string) string {
        return strings.Replace(addr, "/left", "/right", 1)
    })
*/
package osc
