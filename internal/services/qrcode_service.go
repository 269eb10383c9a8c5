package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/qr_attendance/internal/models"
	"github.com/qr_attendance/internal/repositories"
	"github.com/qr_attendance/pkg/qrtoken"
)

var (
	// ErrQRCodeNotFound 表示二维码从未签发或不属于该企业
	ErrQRCodeNotFound = errors.New("二维码不存在")
	// ErrQRCodeInactive 表示二维码已被新码取代
	ErrQRCodeInactive = errors.New("二维码已停用")
)

// CodeRegistry 是扫码校验所需的注册表查询能力
type CodeRegistry interface {
	Lookup(ctx context.Context, qrID, companyID string) (*models.QRCode, error)
}

// GeneratedQRCode 是签发结果
type GeneratedQRCode struct {
	QRID      string    `json:"qrId"`
	CompanyID string    `json:"companyId"`
	ScanURL   string    `json:"scanUrl"`
	QRImage   string    `json:"qrImage"` // PNG data URL
	CreatedAt time.Time `json:"createdAt"`
}

// QRCodeService 定义了二维码注册表服务接口
type QRCodeService interface {
	CodeRegistry
	// Issue 签发新码并使该企业旧码失效
	Issue(ctx context.Context, companyID string) (*models.QRCode, error)
	IsActive(ctx context.Context, qrID, companyID string) bool
	// Generate 签发新码并返回扫码 URL 与图片
	Generate(ctx context.Context, companyID string) (*GeneratedQRCode, error)
	// Current 返回当前有效码，没有时返回 ErrQRCodeNotFound
	Current(ctx context.Context, companyID string) (*GeneratedQRCode, error)
}

type qrCodeService struct {
	repo      repositories.QRCodeRepository
	baseURL   string
	imageSize int
}

// NewQRCodeService 创建 QRCodeService。baseURL 为扫码页面所在的站点根地址。
func NewQRCodeService(repo repositories.QRCodeRepository, baseURL string, imageSize int) QRCodeService {
	return &qrCodeService{repo: repo, baseURL: baseURL, imageSize: imageSize}
}

func (s *qrCodeService) Issue(ctx context.Context, companyID string) (*models.QRCode, error) {
	if companyID == "" {
		return nil, fmt.Errorf("issue qr code: %w", ErrCompanyRequired)
	}
	code := &models.QRCode{CompanyID: companyID, CreatedAt: time.Now().UTC()}
	if err := s.repo.IssueActive(ctx, code); err != nil {
		return nil, fmt.Errorf("issue qr code: %w", err)
	}
	log.Printf("企业 %s 签发了新二维码 %s", companyID, code.ID)
	return code, nil
}

func (s *qrCodeService) Lookup(ctx context.Context, qrID, companyID string) (*models.QRCode, error) {
	code, err := s.repo.FindByID(ctx, qrID, companyID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, ErrQRCodeNotFound
		}
		return nil, err
	}
	return code, nil
}

func (s *qrCodeService) IsActive(ctx context.Context, qrID, companyID string) bool {
	code, err := s.Lookup(ctx, qrID, companyID)
	if err != nil {
		return false
	}
	return code.Active
}

func (s *qrCodeService) Generate(ctx context.Context, companyID string) (*GeneratedQRCode, error) {
	code, err := s.Issue(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.render(code)
}

func (s *qrCodeService) Current(ctx context.Context, companyID string) (*GeneratedQRCode, error) {
	code, err := s.repo.FindActive(ctx, companyID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, ErrQRCodeNotFound
		}
		return nil, err
	}
	return s.render(code)
}

// render 为记录生成扫码 URL (新的时间戳与 nonce) 和图片
func (s *qrCodeService) render(code *models.QRCode) (*GeneratedQRCode, error) {
	scanURL, err := qrtoken.Encode(s.baseURL, code.CompanyID, code.ID)
	if err != nil {
		return nil, fmt.Errorf("encode qr token: %w", err)
	}
	image, err := qrtoken.RenderDataURL(scanURL, s.imageSize)
	if err != nil {
		return nil, fmt.Errorf("render qr image: %w", err)
	}
	return &GeneratedQRCode{
		QRID:      code.ID,
		CompanyID: code.CompanyID,
		ScanURL:   scanURL,
		QRImage:   image,
		CreatedAt: code.CreatedAt,
	}, nil
}
