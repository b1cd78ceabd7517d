// Copyright 2022 CFC4N <cfc4n.cs@gmail.com>. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import "strconv"

// Status is the code carried by every API response.
type Status uint8

const (
	RespOK Status = iota
	RespErrorInvalidRequest
	RespErrorInternalServer
	RespErrorNotFound
	RespIdentifierMalformed
)

var statusNames = [...]string{
	RespOK:                  "RespOK",
	RespErrorInvalidRequest: "RespErrorInvalidRequest",
	RespErrorInternalServer: "RespErrorInternalServer",
	RespErrorNotFound:       "RespErrorNotFound",
	RespIdentifierMalformed: "RespIdentifierMalformed",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "Status(" + strconv.Itoa(int(s)) + ")"
}

// Resp -
type Resp struct {
	Code Status      `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

func ok(data interface{}) Resp {
	return Resp{Code: RespOK, Msg: RespOK.String(), Data: data}
}

func fail(code Status, err error) Resp {
	msg := code.String()
	if err != nil {
		msg = err.Error()
	}
	return Resp{Code: code, Msg: msg}
}
