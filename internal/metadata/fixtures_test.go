// file: internal/metadata/fixtures_test.go
// version: 1.0.0
// guid: 8d1f3b6e-0a9c-4d2e-b7f5-3c6a9e1d8b42

package metadata

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const testBaseURL = "http://catalog.test"

const novelInfo1312354 = `{
	"code": 200,
	"msg": "ok",
	"data": {
		"novel_id": 1312354,
		"novel_name": "降水概率百分百",
		"author_nickname": "芥菜糊糊",
		"novel_info": "<p>第一段</p><p>第二段</p>",
		"novel_desc": "简介",
		"tag_list": ["小甜饼", "年下", "搞笑", "he", "甜宠"],
		"novel_cover": "https://resourcecp.oss-cn-beijing.aliyuncs.com/upload/1312354.jpg"
	}
}`

const novelInfo154936 = `{
	"code": 200,
	"data": {
		"novel_name": "荒野植被",
		"author_nickname": "麦香鸡呢",
		"novel_info": "",
		"novel_desc": "破镜重圆的故事",
		"tag_list": ["破镜重圆"],
		"novel_cover": ""
	}
}`

const chapters1312354 = `{
	"code": 200,
	"data": {
		"list": [
			{"order": "0", "type": "volume", "name": "第一卷", "public_date": ""},
			{"order": "1", "type": "item", "name": "第一章", "public_date": "2023-03-01 12:30:00"},
			{"order": "2", "type": "item", "name": "第二章", "public_date": "2023-03-02 12:30:00"}
		]
	}
}`

const searchRain = `{
	"code": 200,
	"data": {
		"count": 4,
		"list": [
			{"novel_id": 1312354, "novel_name": "降水概率百分百", "novel_author": "芥菜糊糊",
			 "novel_cover": "https://cdn.test/1312354.jpg?x-oss-process=style/small",
			 "novel_tag_arr": ["小甜饼", "年下"], "novel_desc": "下雨天"},
			{"novel_id": "", "novel_name": "无编号", "novel_author": "佚名"},
			{"novel_id": "88", "novel_name": "降水之后", "novel_author": "某人",
			 "novel_tag_arr": ["he"]},
			{"novel_name": "缺字段", "novel_author": "某人"}
		]
	}
}`

type fakeResponse struct {
	body string
	err  error
}

// fakeHTTP serves canned bodies keyed by URL and records every request.
type fakeHTTP struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	calls     []string
	timeouts  []time.Duration
}

func newFakeHTTP() *fakeHTTP {
	return &fakeHTTP{responses: make(map[string]fakeResponse)}
}

func (f *fakeHTTP) on(url, body string) *fakeHTTP {
	f.responses[url] = fakeResponse{body: body}
	return f
}

func (f *fakeHTTP) fail(url string, err error) *fakeHTTP {
	f.responses[url] = fakeResponse{err: err}
	return f
}

func (f *fakeHTTP) Get(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	f.timeouts = append(f.timeouts, timeout)
	r, ok := f.responses[url]
	if !ok {
		return nil, fmt.Errorf("%w: GET %s returned status 404", ErrTransport, url)
	}
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.body), nil
}

func (f *fakeHTTP) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == url {
			n++
		}
	}
	return n
}

func (f *fakeHTTP) allCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestSource(f *fakeHTTP) *Changpei {
	return NewChangpei(f, testBaseURL)
}
