// Copyright 2025 The Wireflow Authors, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import "net/http"

type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

func NewResponse(code int, msg string, data interface{}) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
		Data: data,
	}
}

func WriteOK(fn func(code int, obj any), data interface{}) {
	fn(http.StatusOK, NewResponse(http.StatusOK, "success", data))
}

func WriteError(fn func(code int, obj any), msg string) {
	fn(http.StatusInternalServerError, NewResponse(http.StatusInternalServerError, msg, nil))
}

func WriteBadRequest(fn func(code int, obj any), msg string) {
	fn(http.StatusBadRequest, NewResponse(http.StatusBadRequest, msg, nil))
}
