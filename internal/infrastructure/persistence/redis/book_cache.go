package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/library/internal/domain/book"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// setIfVersionScript 版本号未变时才写入
// KEYS[1]=book:{id} KEYS[2]=book:{id}:ver
// ARGV[1]=回填前读到的版本 ARGV[2]=JSON ARGV[3]=TTL(毫秒,0为不过期)
var setIfVersionScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// BookCache 图书详情缓存(Cache-Aside)
// 设计说明:
// 1. Key设计:book:{id},值为JSON;book:{id}:ver 为版本号
// 2. 读:先查缓存,未命中由调用方先取版本、再查库、最后按版本回填
// 3. 写:图书被修改、删除或借还后删除Key并递增版本,进行中的旧回填随之作废
type BookCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBookCache 创建图书缓存
func NewBookCache(client *redis.Client, ttl time.Duration) *BookCache {
	return &BookCache{client: client, ttl: ttl}
}

// Get 读取缓存,未命中返回(nil, false, nil)
func (c *BookCache) Get(ctx context.Context, id uint) (*book.Book, bool, error) {
	data, err := c.client.Get(ctx, bookKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, apperrors.Wrap(err, "读取图书缓存失败")
	}

	b, err := decodeBook(data)
	if err != nil {
		// 脏数据直接删除
		_ = c.client.Del(ctx, bookKey(id)).Err()
		return nil, false, err
	}
	return b, true, nil
}

// Version 当前版本号,从未失效过为0
func (c *BookCache) Version(ctx context.Context, id uint) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(id)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, apperrors.Wrap(err, "读取缓存版本失败")
	}
	return v, nil
}

// Set 版本未变时写入缓存
func (c *BookCache) Set(ctx context.Context, b *book.Book, version int64) (bool, error) {
	data, err := encodeBook(b)
	if err != nil {
		return false, err
	}
	n, err := setIfVersionScript.Run(ctx, c.client,
		[]string{bookKey(b.ID), versionKey(b.ID)},
		strconv.FormatInt(version, 10), data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, apperrors.Wrap(err, "写入图书缓存失败")
	}
	return n == 1, nil
}

// Invalidate 删除缓存并递增版本(同一个MULTI中执行)
func (c *BookCache) Invalidate(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Del(ctx, bookKey(id))
			pipe.Incr(ctx, versionKey(id))
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrap(err, "删除图书缓存失败")
	}
	return nil
}

func bookKey(id uint) string {
	return fmt.Sprintf("book:%d", id)
}

func versionKey(id uint) string {
	return fmt.Sprintf("book:%d:ver", id)
}

func encodeBook(b *book.Book) ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, apperrors.Wrap(err, "图书序列化失败")
	}
	return data, nil
}

func decodeBook(data []byte) (*book.Book, error) {
	var b book.Book
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, apperrors.Wrap(err, "图书反序列化失败")
	}
	return &b, nil
}
