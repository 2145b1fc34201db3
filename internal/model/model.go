package model

// --- v2 create tweet ---

type TweetReq struct {
	Text string `json:"text"`
}

type TweetResp struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// --- error bodies ---

// V2Problem is the problem+json body returned by the v2 endpoints.
type V2Problem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
	Status int    `json:"status"`
}

// V1Errors is the legacy {"errors":[...]} body, still returned by some
// v1.1 and auth failures.
type V1Errors struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}
