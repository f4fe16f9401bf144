// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package relay

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/pkg/errors"
)

const genericErrorMessage = "relay request failed"

// maxErrorBody bounds how much of a failed response is read.
const maxErrorBody = 1 << 16

// Error is returned for every non-2xx relay response.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("relay: %d %s", e.StatusCode, e.Message)
}

// StatusCode returns the relay status carried by err, or 0 when err is not
// a relay error.
func StatusCode(err error) int {
	var relayErr *Error
	if errors.As(err, &relayErr) {
		return relayErr.StatusCode
	}
	return 0
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func newError(statusCode int, body io.Reader) *Error {
	relayErr := &Error{StatusCode: statusCode, Message: genericErrorMessage}
	data, err := ioutil.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return relayErr
	}
	var decoded errorBody
	if json.Unmarshal(data, &decoded) != nil {
		return relayErr
	}
	switch {
	case decoded.Message != "":
		relayErr.Message = decoded.Message
	case decoded.Error != "":
		relayErr.Message = decoded.Error
	}
	return relayErr
}
