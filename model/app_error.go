// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package model

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
)

type AppError struct {
	ID            string `json:"id"`
	Message       string `json:"message"`               // Message to be display to the end user without debugging information
	DetailedError string `json:"detailed_error"`        // Internal error string to help the developer
	RequestID     string `json:"request_id,omitempty"`  // The RequestID that's also set in the header
	StatusCode    int    `json:"status_code,omitempty"` // The http status code
	Where         string `json:"-"`                     // The function where it happened in the form of Struct.Func
}

func (er *AppError) Error() string {
	if er.DetailedError == "" {
		return er.Where + ": " + er.Message
	}
	return er.Where + ": " + er.Message + ", " + er.DetailedError
}

func (er *AppError) ToJSON() string {
	b, err := json.Marshal(er)
	if err != nil {
		return ""
	}

	return string(b)
}

// AppErrorFromJSON will decode the input and return an AppError. Bodies that
// are not an AppError become one carrying the raw body as detail.
func AppErrorFromJSON(data io.Reader) *AppError {
	str := ""
	bytes, rerr := ioutil.ReadAll(data)
	if rerr != nil {
		str = rerr.Error()
	} else {
		str = string(bytes)
	}

	decoder := json.NewDecoder(strings.NewReader(str))
	var er AppError
	err := decoder.Decode(&er)
	if err != nil || er.Message == "" {
		return NewAppError("AppErrorFromJSON", "model.utils.decode_json.app_error", "", "body: "+str, http.StatusInternalServerError)
	}

	return &er
}

func NewAppError(where string, id string, message string, details string, status int) *AppError {
	ap := &AppError{}
	ap.ID = id
	ap.Message = message
	if ap.Message == "" {
		ap.Message = id
	}
	ap.Where = where
	ap.DetailedError = details
	ap.StatusCode = status
	return ap
}
