// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package json

import (
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
)

// NewCodec returns a JSON-RPC 2.0 codec that resolves "service.method" to
// the exported Go method by upper casing the first letter of the method.
func NewCodec() rpc.Codec {
	return lowercase{json2.NewCodec()}
}

type lowercase struct{ *json2.Codec }

func (lc lowercase) NewRequest(r *http.Request) rpc.CodecRequest {
	return &request{lc.Codec.NewRequest(r)}
}

type request struct{ rpc.CodecRequest }

func (r *request) Method() (string, error) {
	method, err := r.CodecRequest.Method()
	sections := strings.SplitN(method, ".", 2)
	if len(sections) != 2 || err != nil {
		return method, err
	}
	class, function := sections[0], sections[1]
	firstRune, runeLen := utf8.DecodeRuneInString(function)
	if firstRune == utf8.RuneError {
		return method, nil
	}
	return fmt.Sprintf("%s.%c%s", class, unicode.ToUpper(firstRune), function[runeLen:]), nil
}
