package notify

import (
	"fmt"
	"time"

	"github.com/ayushm3018/Vechicle-Request-System/internal/common/config"
	"github.com/ayushm3018/Vechicle-Request-System/internal/common/logger"
	"github.com/ayushm3018/Vechicle-Request-System/internal/common/middleware"
	"github.com/ayushm3018/Vechicle-Request-System/internal/request"
	"github.com/ayushm3018/Vechicle-Request-System/internal/user"
	"github.com/ayushm3018/Vechicle-Request-System/internal/vehicle"
	gomail "gopkg.in/gomail.v2"
)

// Mailer 基于 SMTP 的申请单通知实现。所有发送都是单次尝试、best-effort：
// 失败往上返回 error，由调用方（request.Service 的异步分发）记日志后丢弃。
// SMTP 持续故障时由熔断器快速失败，避免每次审批都等一轮发信超时。
type Mailer struct {
	cfg     config.SMTPConfig
	dialer  *gomail.Dialer
	breaker *middleware.CircuitBreaker
	log     logger.Logger
}

// NewMailer 创建 SMTP 通知器。transporter 在进程启动时构造一次，显式注入使用。
func NewMailer(cfg config.SMTPConfig, log logger.Logger) *Mailer {
	return &Mailer{
		cfg:     cfg,
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		breaker: middleware.NewCircuitBreaker("smtp", 5, 30*time.Second),
		log:     log,
	}
}

// NewRequestSubmitted 新申请单提交后通知管理员信箱。
func (m *Mailer) NewRequestSubmitted(req *request.Request, employee *user.User) error {
	if m.cfg.AdminEmail == "" {
		return fmt.Errorf("admin_email not configured")
	}

	employeeName := ""
	if employee != nil {
		employeeName = employee.Name
	}
	body := fmt.Sprintf(
		"<h2>New Vehicle Requisition Request</h2>"+
			"<p>Submitted by: %s</p>"+
			"<p>Officer: %s (%s)</p>"+
			"<p>Date: %s, %s - %s</p>"+
			"<p>Report place: %s</p>"+
			"<p>Places to visit: %s</p>"+
			"<p>Purpose: %s</p>",
		employeeName,
		req.OfficerName, req.Designation,
		req.RequiredDate, req.RequiredTime, req.ReleaseTime,
		req.ReportPlace, req.PlacesToVisit, req.JourneyPurpose,
	)

	return m.send(m.cfg.AdminEmail, "New Vehicle Request Submitted", body)
}

// RequestDecided 审批结果通知员工。approved 时附上分配车辆信息。
func (m *Mailer) RequestDecided(req *request.Request, employee *user.User, veh *vehicle.Vehicle) error {
	if employee == nil || employee.Email == "" {
		return fmt.Errorf("employee email unknown for request %s", req.ID)
	}

	var subject, body string
	switch req.Status {
	case request.StatusApproved:
		subject = "Vehicle Request Approved"
		body = fmt.Sprintf(
			"<h2>Your vehicle request has been approved</h2>"+
				"<p>Date: %s, %s - %s</p>",
			req.RequiredDate, req.RequiredTime, req.ReleaseTime,
		)
		if veh != nil {
			body += fmt.Sprintf(
				"<p>Assigned vehicle: %s (%s)</p><p>Driver: %s</p>",
				veh.VehicleNumber, veh.MakeModel, veh.DriverName,
			)
		}
	case request.StatusRejected:
		subject = "Vehicle Request Rejected"
		body = fmt.Sprintf(
			"<h2>Your vehicle request has been rejected</h2>"+
				"<p>Reason: %s</p>",
			req.RejectionReason,
		)
	default:
		return fmt.Errorf("no notification for status %s", req.Status)
	}

	return m.send(employee.Email, subject, body)
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return m.breaker.Call(func() error {
		return m.dialer.DialAndSend(msg)
	})
}

// noopNotifier SMTP 未启用时的空实现，所有通知直接丢弃（只记 debug 日志）。
type noopNotifier struct {
	log logger.Logger
}

// NewNoop 创建空通知器。
func NewNoop(log logger.Logger) request.Notifier {
	return &noopNotifier{log: log}
}

func (n *noopNotifier) NewRequestSubmitted(req *request.Request, _ *user.User) error {
	if n.log != nil {
		n.log.Debugf("smtp disabled, dropping new-request notification for %s", req.ID)
	}
	return nil
}

func (n *noopNotifier) RequestDecided(req *request.Request, _ *user.User, _ *vehicle.Vehicle) error {
	if n.log != nil {
		n.log.Debugf("smtp disabled, dropping decision notification for %s", req.ID)
	}
	return nil
}
