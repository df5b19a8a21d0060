package controller

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cswni/mailstack/app/server/logic"
	"github.com/cswni/mailstack/common/service/docker"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/spf13/cast"
	"github.com/we7coreteam/w7-rangine-go/v2/src/http/controller"
)

type Service struct {
	controller.Abstract
}

func (self Service) Logs(http *gin.Context) {
	type ParamsValidate struct {
		Service string `json:"service" binding:"required"`
		Tail    int    `json:"tail"`
	}
	params := ParamsValidate{}
	if !self.Validate(http, &params) {
		return
	}
	cfg, err := logic.Config()
	if err != nil {
		self.JsonResponseWithError(http, err, 500)
		return
	}
	if params.Tail <= 0 {
		params.Tail = cfg.LogLines
	}
	reader, err := docker.Sdk.ServiceLogs(docker.Sdk.Ctx,
		fmt.Sprintf("%s_%s", cfg.StackName, params.Service),
		docker.ServiceLogsOption{Tail: cast.ToString(params.Tail)},
	)
	if err != nil {
		self.JsonResponseWithError(http, err, 500)
		return
	}
	defer func() {
		_ = reader.Close()
	}()
	var stdout, stderr strings.Builder
	if _, err = stdcopy.StdCopy(&stdout, &stderr, reader); err != nil && err != io.EOF {
		self.JsonResponseWithError(http, err, 500)
		return
	}
	self.JsonResponseWithoutError(http, gin.H{
		"stdout": stdout.String(),
		"stderr": stderr.String(),
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LogsFollow streams service logs over a websocket, one text frame per line.
func (self Service) LogsFollow(ginCtx *gin.Context) {
	service := ginCtx.Query("service")
	if service == "" {
		self.JsonResponseWithError(ginCtx, fmt.Errorf("service query parameter required"), 400)
		return
	}
	cfg, err := logic.Config()
	if err != nil {
		self.JsonResponseWithError(ginCtx, err, 500)
		return
	}
	conn, err := upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	reader, err := docker.Sdk.ServiceLogs(docker.Sdk.Ctx,
		fmt.Sprintf("%s_%s", cfg.StackName, service),
		docker.ServiceLogsOption{Tail: cast.ToString(cfg.LogLines), Follow: true},
	)
	if err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(err.Error()))
		return
	}
	defer func() {
		_ = reader.Close()
	}()

	// drain client frames so pings and the close handshake work, closing
	// the log reader ends the copy loop below
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				_ = reader.Close()
				return
			}
		}
	}()

	pipeReader, pipeWriter := io.Pipe()
	go func() {
		_, copyErr := stdcopy.StdCopy(pipeWriter, pipeWriter, reader)
		_ = pipeWriter.CloseWithError(copyErr)
	}()

	scanner := bufio.NewScanner(pipeReader)
	scanner.Buffer(make([]byte, 64*1024), 512*1024)
	for scanner.Scan() {
		_ = conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, scanner.Bytes()); err != nil {
			return
		}
	}
}
