package mysql

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/library/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明:
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数(MaxOpenConns、MaxIdleConns、ConnMaxLifetime)
// 3. 开发环境开启SQL日志,生产环境关闭
// 4. 自动迁移表结构(AutoMigrate)
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true, // 唯一索引冲突翻译为gorm.ErrDuplicatedKey
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	log.Info("数据库连接成功",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("dbname", cfg.Database.DBName),
	)

	// 注意:生产环境应使用版本化的迁移脚本
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&BookModel{},
		&MemberModel{},
		&LoanModel{},
	)
}

// BookModel GORM图书模型
// 设计说明:
// 1. ISBN唯一索引(utf8mb4_bin保证按字节比较)
// 2. 可借数量由check约束兜底:0 <= available_copies <= copies
type BookModel struct {
	ID              uint      `gorm:"primaryKey"`
	Title           string    `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author          string    `gorm:"index:idx_search;size:100;not null;comment:作者"`
	ISBN            string    `gorm:"uniqueIndex;size:20;not null;collate:utf8mb4_bin;comment:ISBN号"`
	Category        string    `gorm:"index;size:50;not null;comment:分类"`
	PublishYear     int       `gorm:"not null;comment:出版年份"`
	Copies          int       `gorm:"not null;check:chk_books_copies,copies >= 1;comment:馆藏副本数"`
	AvailableCopies int       `gorm:"not null;check:chk_books_available,available_copies >= 0 AND available_copies <= copies;comment:可借副本数"`
	CreatedAt       time.Time `gorm:"comment:创建时间"`
	UpdatedAt       time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// MemberModel GORM会员模型
// BorrowedBooks以JSON数组存储
type MemberModel struct {
	ID             uint      `gorm:"primaryKey"`
	Name           string    `gorm:"size:100;not null;comment:姓名"`
	Email          string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱(小写)"`
	Phone          string    `gorm:"size:10;not null;comment:手机号"`
	MembershipDate time.Time `gorm:"type:date;not null;comment:入会日期"`
	BorrowedBooks  []uint    `gorm:"serializer:json;type:json;comment:在借图书ID"`
	CreatedAt      time.Time `gorm:"comment:创建时间"`
	UpdatedAt      time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (MemberModel) TableName() string {
	return "members"
}

// LoanModel GORM借阅记录模型
// (member_id, book_id, status)复合索引用于查找进行中的记录
type LoanModel struct {
	ID         uint       `gorm:"primaryKey"`
	MemberID   uint       `gorm:"index:idx_loan_pair;not null;comment:会员ID"`
	BookID     uint       `gorm:"index:idx_loan_pair;index;not null;comment:图书ID"`
	Status     string     `gorm:"index:idx_loan_pair;size:16;not null;comment:状态(active/returned)"`
	BorrowDate time.Time  `gorm:"type:date;not null;comment:借出日期"`
	DueDate    time.Time  `gorm:"type:date;not null;comment:应还日期"`
	ReturnDate *time.Time `gorm:"type:date;comment:归还日期"`
}

// TableName 指定表名
func (LoanModel) TableName() string {
	return "loans"
}
