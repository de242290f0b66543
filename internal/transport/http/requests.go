package httptransport

// ussdRequest is the gateway's inbound envelope. USERDATA carries whatever
// the subscriber typed at the previous prompt; empty on first contact.
type ussdRequest struct {
	UserID   string `json:"USERID,omitempty"`
	MSISDN   string `json:"MSISDN"`
	UserData string `json:"USERDATA"`
}

// ussdResponse is the gateway's outbound envelope. MSGTYPE true means the
// gateway should collect further input; false ends the conversation.
type ussdResponse struct {
	UserID  string `json:"USERID"`
	MSISDN  string `json:"MSISDN"`
	Msg     string `json:"MSG"`
	MsgType bool   `json:"MSGTYPE"`
}
