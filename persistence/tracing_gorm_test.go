package persistence_test

import (
	"bidhub/domain"
	"bidhub/persistence"
	"bidhub/testinfra"
	"context"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	. "github.com/onsi/gomega"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
)

func TestGormTracing(t *testing.T) {
	RegisterTestingT(t)

	tracer := mocktracer.New()
	opentracing.SetGlobalTracer(tracer)
	defer opentracing.SetGlobalTracer(opentracing.NoopTracer{})
	var testDatabase *testinfra.TestDatabase

	t.Run("gorm tracing should be ignored when parent span not found", func(t *testing.T) {
		gormTracingTestSetup(t, &testDatabase)
		defer gormTracingTestTeardown(t, testDatabase)

		tracer.Reset()

		r := []domain.WorkUnit{}
		Expect(testDatabase.DS.GormDB(context.Background()).Find(&r).Error).To(BeNil())
		Expect(len(r)).To(BeZero())
		Expect(len(tracer.FinishedSpans())).To(Equal(0))
	})

	t.Run("gorm tracing should be work with parent span", func(t *testing.T) {
		gormTracingTestSetup(t, &testDatabase)
		defer gormTracingTestTeardown(t, testDatabase)

		tracer.Reset()

		clientSpan := tracer.StartSpan("client")
		ctx := opentracing.ContextWithSpan(context.Background(), clientSpan)

		r := []domain.WorkUnit{}
		Expect(testDatabase.DS.GormDB(ctx).Find(&r).Error).To(BeNil())
		Expect(len(r)).To(BeZero())

		clientSpan.Finish()

		spans := tracer.FinishedSpans()
		Expect(len(spans)).To(Equal(2))
		s0 := spans[1]
		Expect(s0.OperationName).To(Equal("client"))
		Expect(s0.ParentID).To(BeZero())

		s1 := spans[0]
		Expect(s1.OperationName).To(Equal("sql"))
		Expect(s1.ParentID).To(Equal(s0.SpanContext.SpanID))
		Expect(s1.SpanContext.TraceID).To(Equal(s0.SpanContext.TraceID))
	})
}

func TestDialectHelpers(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should recognize unique violations of both dialects", func(t *testing.T) {
		gormTracingTestSetup(t, &testDatabase)
		defer gormTracingTestTeardown(t, testDatabase)

		db := testDatabase.DS.GormDB(context.Background())
		Expect(db.Create(&domain.Bid{ID: 1, WorkUnitID: 10, BidderID: 20, Status: domain.BidStatusPending}).Error).To(BeNil())
		err := db.Create(&domain.Bid{ID: 2, WorkUnitID: 10, BidderID: 20, Status: domain.BidStatusPending}).Error
		Expect(err).ToNot(BeNil())
		Expect(persistence.IsUniqueViolation(err)).To(BeTrue())

		Expect(persistence.IsUniqueViolation(nil)).To(BeFalse())
		Expect(persistence.IsUniqueViolation(errors.New("some error"))).To(BeFalse())
		Expect(persistence.IsUniqueViolation(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})).To(BeTrue())
		Expect(persistence.IsUniqueViolation(&mysql.MySQLError{Number: 1213, Message: "Deadlock"})).To(BeFalse())
	})

	t.Run("should lock rows only on mysql", func(t *testing.T) {
		gormTracingTestSetup(t, &testDatabase)
		defer gormTracingTestTeardown(t, testDatabase)

		db := testDatabase.DS.GormDB(context.Background())
		option, found := persistence.ForUpdate(db).Get("gorm:query_option")
		if db.Dialect().GetName() == persistence.DriverMysql {
			Expect(found).To(BeTrue())
			Expect(option).To(Equal("FOR UPDATE"))
		} else {
			Expect(found).To(BeFalse())
		}

		r := []domain.WorkUnit{}
		Expect(persistence.ForUpdate(db).Find(&r).Error).To(BeNil())
	})
}

func gormTracingTestSetup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartTestDatabase("bidhub")
	*testDatabase = db
	Expect(db.DS.GormDB(context.Background()).AutoMigrate(&domain.WorkUnit{}, &domain.Bid{}).Error).To(BeNil())
}

func gormTracingTestTeardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopTestDatabase(testDatabase)
	}
}
