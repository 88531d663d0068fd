package telemetry

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"audiocinema/internal/types"
)

const (
	telemetryTopic = "v1/devices/me/telemetry"
	publishQoS     = 1
	waitTimeout    = 5 * time.Second
)

// Client ThingsBoard 遥测客户端。发布即忘：引擎不关心传输结果，
// 不做任何重试，失败只向调用方报告一次。
type Client struct {
	host   string
	port   int
	token  string
	useTLS bool
	conn   mqtt.Client
}

// NewClient 创建遥测客户端，token 作为 MQTT 用户名
func NewClient(host string, port int, token string, useTLS bool) *Client {
	return &Client{host: host, port: port, token: token, useTLS: useTLS}
}

// brokerURL 按 TLS 开关拼出 broker 地址
func (c *Client) brokerURL() string {
	scheme := "tcp"
	if c.useTLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.host, c.port)
}

// clientID 设备端标识，沿用历史格式便于在平台上追踪来源
func clientID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("AudioCinemaPi-%s-%d", hostname, os.Getpid())
}

// Connect 建立 MQTT 连接
func (c *Client) Connect() error {
	opts := mqtt.NewClientOptions().
		AddBroker(c.brokerURL()).
		SetClientID(clientID()).
		SetUsername(c.token).
		SetConnectTimeout(waitTimeout)

	if c.useTLS {
		// 现场部署常见自签证书，沿用原有的宽松校验
		opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: true})
	}

	conn := mqtt.NewClient(opts)
	token := conn.Connect()
	if !token.WaitTimeout(waitTimeout) {
		return fmt.Errorf("连接遥测服务超时: %s", c.brokerURL())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("连接遥测服务失败: %w", err)
	}
	c.conn = conn
	return nil
}

// Close 断开连接
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Disconnect(250)
		c.conn = nil
	}
}

// PublishFlat 第一步：只发扁平的逐通道状态，
// 保证看板组件不解析嵌套结构也能收到。
func (c *Client) PublishFlat(flat map[string]string) error {
	if len(flat) == 0 {
		return nil
	}
	return c.publish(flat)
}

// PublishFull 第二步：发完整的结构化结果负载。
// 与扁平视图是两次独立的投递，任一失败不影响另一次。
func (c *Client) PublishFull(payload *types.ResultPayload) error {
	return c.publish(payload)
}

// publish 单次 QoS 1 投递
func (c *Client) publish(v any) error {
	if c.conn == nil {
		return fmt.Errorf("遥测客户端未连接")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("序列化遥测数据失败: %w", err)
	}
	token := c.conn.Publish(telemetryTopic, publishQoS, false, data)
	if !token.WaitTimeout(waitTimeout) {
		return fmt.Errorf("遥测投递超时")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("遥测投递失败: %w", err)
	}
	return nil
}
