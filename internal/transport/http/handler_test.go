package httptransport

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"sikaloan/internal/menu"
	"sikaloan/internal/transport/http/mocks"
	"sikaloan/pkg/domainerrors"
	"sikaloan/pkg/testutil"
)

type USSDHandlerSuite struct {
	suite.Suite

	ctrl       *gomock.Controller
	engine     *mocks.MockEngine
	router     http.Handler
	lastStatus int
}

func TestUSSDHandlerSuite(t *testing.T) {
	suite.Run(t, new(USSDHandlerSuite))
}

func (s *USSDHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.engine = mocks.NewMockEngine(s.ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(s.engine, logger)
	s.router = NewRouter(handler, RouterConfig{}, logger, nil)
}

func (s *USSDHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *USSDHandlerSuite) post(body any) *ussdResponse {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/ussd", body)
	rr := testutil.DoRequest(s.router, req)
	s.lastStatus = rr.Code
	return testutil.UnmarshalResponse[ussdResponse](s.T(), rr)
}

func (s *USSDHandlerSuite) TestSuccessEnvelope() {
	s.engine.EXPECT().
		Handle(gomock.Any(), "233244123456", "1").
		Return(menu.Response{Message: "Enter your full name:", Continue: true}, nil)

	resp := s.post(map[string]string{"MSISDN": "233244123456", "USERDATA": "1"})

	s.Equal(http.StatusOK, s.lastStatus)
	s.Equal("USER-233244123456", resp.UserID)
	s.Equal("233244123456", resp.MSISDN)
	s.Equal("Enter your full name:", resp.Msg)
	s.True(resp.MsgType)
}

func (s *USSDHandlerSuite) TestTerminalResponseEndsSession() {
	s.engine.EXPECT().
		Handle(gomock.Any(), "233244123456", "6").
		Return(menu.Response{Message: "Thank you for using sika loan. Goodbye!", Continue: false}, nil)

	resp := s.post(map[string]string{"MSISDN": "233244123456", "USERDATA": "6"})

	s.Equal(http.StatusOK, s.lastStatus)
	s.False(resp.MsgType)
}

func (s *USSDHandlerSuite) TestMissingMSISDN() {
	resp := s.post(map[string]string{"USERDATA": "1"})

	s.Equal(http.StatusBadRequest, s.lastStatus)
	s.Equal("Missing MSISDN", resp.Msg)
	s.False(resp.MsgType)
}

func (s *USSDHandlerSuite) TestMalformedBody() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/ussd", "{not json")
	rr := testutil.DoRequest(s.router, req)

	s.Equal(http.StatusBadRequest, rr.Code)
	resp := testutil.UnmarshalResponse[ussdResponse](s.T(), rr)
	s.Equal("Malformed request", resp.Msg)
}

func (s *USSDHandlerSuite) TestInvalidMSISDNFromEngine() {
	s.engine.EXPECT().
		Handle(gomock.Any(), "999", "").
		Return(menu.Response{}, domainerrors.New(domainerrors.CodeBadRequest, "invalid msisdn"))

	resp := s.post(map[string]string{"MSISDN": "999", "USERDATA": ""})

	s.Equal(http.StatusBadRequest, s.lastStatus)
	s.Equal("Invalid MSISDN", resp.Msg)
}

func (s *USSDHandlerSuite) TestStorageFailureIsGeneric() {
	s.engine.EXPECT().
		Handle(gomock.Any(), "233244123456", "2").
		Return(menu.Response{}, domainerrors.Wrap(errors.New("redis: connection refused"), domainerrors.CodeUnavailable, "load session"))

	resp := s.post(map[string]string{"MSISDN": "233244123456", "USERDATA": "2"})

	s.Equal(http.StatusServiceUnavailable, s.lastStatus)
	s.Equal("An error occurred. Please try again later.", resp.Msg)
	s.False(resp.MsgType)
	s.NotContains(resp.Msg, "redis", "internal detail must not leak")
}

func (s *USSDHandlerSuite) TestUncodedErrorIsInternal() {
	s.engine.EXPECT().
		Handle(gomock.Any(), "233244123456", "1").
		Return(menu.Response{}, errors.New("boom"))

	resp := s.post(map[string]string{"MSISDN": "233244123456", "USERDATA": "1"})

	s.Equal(http.StatusInternalServerError, s.lastStatus)
	s.Equal("An error occurred. Please try again later.", resp.Msg)
}

func (s *USSDHandlerSuite) TestHealthz() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodGet, "/healthz", "")
	rr := testutil.DoRequest(s.router, req)
	s.Equal(http.StatusOK, rr.Code)
}
