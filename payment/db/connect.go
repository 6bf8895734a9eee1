package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Connect opens the MySQL database and migrates the payment tables.
func Connect(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := conn.AutoMigrate(&PaymentRecord{}, &WalletLinkSession{}); err != nil {
		return nil, err
	}

	return conn, nil
}
